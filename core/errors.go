package core

import "errors"

// Validation errors (client input)
var (
	ErrUserIDRequired     = errors.New("missing userId")                             // 400
	ErrSessionIDRequired  = errors.New("missing sessionId")                          // 400
	ErrInvalidFlow        = errors.New("invalid flow, expected onboarding or daily") // 400
	ErrInvalidStep        = errors.New("invalid step")                               // 400
	ErrInvalidCalmness    = errors.New("invalid calmness")                           // 400
	ErrInvalidPlan        = errors.New("invalid plan, expected monthly or yearly")   // 400
	ErrInvalidRequestBody = errors.New("invalid request body")                       // 400
)

// Webhook errors
var (
	ErrMissingSignature = errors.New("missing stripe-signature") // 400
	ErrInvalidSignature = errors.New("invalid signature")        // 400
)

// Lookup errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// Config errors (server-side configuration)
var (
	ErrDBAdapterRequired     = errors.New("database adapter is required") // 500
	ErrHTTPAdapterRequired   = errors.New("http adapter is required")     // 500
	ErrBillingNotConfigured  = errors.New("billing not configured")       // 500
	ErrStoreDriverUnknown    = errors.New("unknown store driver")
	ErrStoreConfigIncomplete = errors.New("store configuration incomplete")
)
