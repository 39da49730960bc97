package core

import "time"

// ContentItem is a single prompt of a flow.
//
// Catalog data is authored out-of-band and never written by the server.
type ContentItem struct {
	ID      string  `json:"id"`
	Flow    Flow    `json:"flow"`
	Step    int     `json:"step"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Hint    *string `json:"hint,omitempty"`
	Active  bool    `json:"active"`
}

// SessionAnswer is one answered prompt. Append-only.
type SessionAnswer struct {
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	UserID    string     `json:"userId"`
	Flow      Flow       `json:"flow"`
	Step      int        `json:"step"`
	ContentID string     `json:"contentId"`
	Answer    string     `json:"answer"`
	CreatedAt *time.Time `json:"createdAt"` // nil when the stored value could not be resolved
}

// SessionSummary is the rollup of a single session, keyed by session id.
type SessionSummary struct {
	SessionID    string     `json:"id"`
	UserID       string     `json:"userId"`
	Flow         Flow       `json:"flow"`
	AnswersCount int        `json:"answersCount"`
	LastStep     int        `json:"lastStep"`
	Calmness     *float64   `json:"calmness,omitempty"` // may be fractional in older records
	CalmnessAt   *time.Time `json:"calmnessAt,omitempty"`
	CreatedAt    *time.Time `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
}

// SummaryPatch is a merge-upsert of a SessionSummary.
//
// Nil pointers and empty strings leave the stored field untouched.
// CreatedAt is only written when the summary does not exist yet.
type SummaryPatch struct {
	SessionID    string
	UserID       string
	Flow         Flow
	AnswersCount *int
	LastStep     *int
	Calmness     *int
	CalmnessAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRecord holds the billing entitlement state of a user.
type UserRecord struct {
	UserID               string     `json:"userId"`
	IsPro                bool       `json:"isPro"`
	SubscriptionStatus   *string    `json:"subscriptionStatus"`
	StripeCustomerID     *string    `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd"`
	ProSince             *time.Time `json:"proSince,omitempty"`
}

// UserPatch is a merge-upsert of a UserRecord. Nil fields are left untouched.
type UserPatch struct {
	IsPro                *bool
	SubscriptionStatus   *string
	StripeCustomerID     *string
	StripeSubscriptionID *string
	CurrentPeriodEnd     *time.Time
	ProSince             *time.Time
}

// Entitlement is the public view of a UserRecord
type Entitlement struct {
	IsPro              bool       `json:"isPro"`
	SubscriptionStatus *string    `json:"subscriptionStatus"`
	CurrentPeriodEnd   *time.Time `json:"currentPeriodEnd"`
}

// Insights are lifetime counters over a user's session summaries.
type Insights struct {
	TotalSessions      int            `json:"totalSessions"`
	OnboardingSessions int            `json:"onboardingSessions"`
	DailySessions      int            `json:"dailySessions"`
	Last7DaysSessions  int            `json:"last7DaysSessions"`
	DayBuckets         map[string]int `json:"dayBuckets"`
}

// WeeklyReport compares the trailing 7 days against the 7 days before.
type WeeklyReport struct {
	CalmThisAvg *float64 `json:"calmThisAvg"`
	CalmPrevAvg *float64 `json:"calmPrevAvg"`
	Shifted     bool     `json:"shifted"`
	Repeated    bool     `json:"repeated"`
	WordThis    *string  `json:"wordThis"`
	WordPrev    *string  `json:"wordPrev"`
}

// ErasureResult counts the documents removed by a bulk erasure.
type ErasureResult struct {
	Sessions  int `json:"sessions"`
	Summaries int `json:"summaries"`
}
