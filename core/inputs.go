package core

// RecordAnswerInput contains one answered prompt of a session
type RecordAnswerInput struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Flow      Flow   `json:"flow"`
	Step      int    `json:"step"`
	ContentID string `json:"contentId"`
	Answer    string `json:"answer"`
}

// RecordCalmnessInput contains a calmness rating for a session.
//
// Calmness is kept raw so that numeric strings and non-numeric
// values reach validation instead of failing body decoding.
type RecordCalmnessInput struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Flow      Flow   `json:"flow"`
	Calmness  any    `json:"calmness"`
}

// CheckoutInput starts a subscription checkout
type CheckoutInput struct {
	UserID string `json:"userId"`
	Plan   Plan   `json:"plan"`
}

// UserInput carries a bare user id in a request body
type UserInput struct {
	UserID string `json:"userId"`
}
