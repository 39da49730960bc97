package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// BILLING PORT
// ============================================

// Webhook event types the billing flow reacts to
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// CheckoutRequest describes a hosted checkout session to create
type CheckoutRequest struct {
	UserID     string
	Plan       Plan
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// BillingEvent is a verified webhook event, reduced to the fields we use.
// At most one of Checkout and Subscription is set.
type BillingEvent struct {
	ID           string
	Type         string
	Checkout     *CheckoutCompleted
	Subscription *SubscriptionChange
}

type CheckoutCompleted struct {
	UserID         string
	CustomerID     *string
	SubscriptionID *string
}

type SubscriptionChange struct {
	SubscriptionID   string
	Status           string
	CustomerID       *string
	CurrentPeriodEnd *time.Time
}

// BillingGateway talks to the payment provider
type BillingGateway interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (string, error)
	// ConstructEvent verifies the signature and decodes the payload.
	// Returns ErrInvalidSignature when verification fails.
	ConstructEvent(payload []byte, signature string) (*BillingEvent, error)
}

// BillingConfig carries the provider-independent checkout settings
type BillingConfig struct {
	PriceMonthly string
	PriceYearly  string
	BaseURL      string
}

// ============================================
// EVENT LEDGER PORT
// ============================================

// EventLedger remembers which webhook events were already applied
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// ============================================
// JOURNAL HANDLER (for HTTP adapters)
// ============================================

// JournalHandler provides the journaling operations for HTTP adapters
type JournalHandler interface {
	ListContent(ctx context.Context, flow Flow) ([]*ContentItem, error)

	RecordAnswer(ctx context.Context, input RecordAnswerInput) error
	RecordCalmness(ctx context.Context, input RecordCalmnessInput) error

	History(ctx context.Context, userID string, limit int) ([]*SessionSummary, error)
	Answers(ctx context.Context, userID string) ([]string, error)
	Insights(ctx context.Context, userID string) (*Insights, error)
	Weekly(ctx context.Context, userID string) (*WeeklyReport, error)

	Entitlement(ctx context.Context, userID string) (*Entitlement, error)
	EraseUser(ctx context.Context, userID string) (*ErasureResult, error)

	StartCheckout(ctx context.Context, input CheckoutInput) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(handler JournalHandler, basePath string) error
}
