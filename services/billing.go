package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lborres/kalma/core"
	"github.com/lborres/kalma/pkg/logger"
	"github.com/lborres/kalma/pkg/metrics"
)

type BillingService struct {
	gateway      core.BillingGateway // nil when billing is not configured
	config       core.BillingConfig
	ledger       core.EventLedger // optional
	entitlements *EntitlementService
	log          *logger.Logger
}

func NewBillingService(gateway core.BillingGateway, config core.BillingConfig, ledger core.EventLedger, entitlements *EntitlementService, log *logger.Logger) *BillingService {
	if log == nil {
		log = logger.Nop()
	}
	return &BillingService{
		gateway:      gateway,
		config:       config,
		ledger:       ledger,
		entitlements: entitlements,
		log:          log.With("service", "BillingService"),
	}
}

// StartCheckout creates a hosted subscription checkout and returns its URL
func (s *BillingService) StartCheckout(ctx context.Context, input core.CheckoutInput) (string, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return "", core.ErrUserIDRequired
	}

	plan, err := core.ParsePlan(string(input.Plan))
	if err != nil {
		return "", err
	}

	if s.gateway == nil {
		return "", core.ErrBillingNotConfigured
	}

	priceID := s.config.PriceMonthly
	if plan == core.PlanYearly {
		priceID = s.config.PriceYearly
	}
	if priceID == "" {
		return "", fmt.Errorf("%w - missing price id for %s plan", core.ErrBillingNotConfigured, plan)
	}

	baseURL := strings.TrimRight(s.config.BaseURL, "/")
	url, err := s.gateway.CreateCheckoutSession(ctx, &core.CheckoutRequest{
		UserID:     userID,
		Plan:       plan,
		PriceID:    priceID,
		SuccessURL: baseURL + "/?success=1",
		CancelURL:  baseURL + "/?canceled=1",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return url, nil
}

// HandleWebhook verifies and applies a billing webhook event.
//
// Nothing is written before the signature is verified. Delivery is
// at-least-once: already applied event ids are acknowledged without
// re-applying, and the ledger is only marked after a successful apply.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if strings.TrimSpace(signature) == "" {
		return core.ErrMissingSignature
	}
	if s.gateway == nil {
		return core.ErrBillingNotConfigured
	}

	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSignature) {
			s.log.Warn("webhook signature verification failed", "error", err)
			return err
		}
		return fmt.Errorf("failed to decode webhook event: %w", err)
	}

	if s.alreadyApplied(ctx, event.ID) {
		metrics.RecordWebhookEvent(event.Type, metrics.OutcomeDuplicate)
		s.log.Info("webhook event already applied", "eventId", event.ID, "type", event.Type)
		return nil
	}

	applied, err := s.apply(ctx, event)
	if err != nil {
		metrics.RecordWebhookEvent(event.Type, metrics.OutcomeFailed)
		return fmt.Errorf("failed to apply webhook event %s: %w", event.ID, err)
	}
	if !applied {
		metrics.RecordWebhookEvent(event.Type, metrics.OutcomeIgnored)
		return nil
	}

	metrics.RecordWebhookEvent(event.Type, metrics.OutcomeApplied)
	s.markApplied(ctx, event.ID)
	return nil
}

func (s *BillingService) apply(ctx context.Context, event *core.BillingEvent) (bool, error) {
	switch event.Type {
	case core.EventCheckoutCompleted:
		checkout := event.Checkout
		if checkout == nil || checkout.UserID == "" {
			s.log.Warn("checkout completed without userId metadata", "eventId", event.ID)
			return false, nil
		}
		return true, s.entitlements.ApplyCheckoutCompleted(ctx, checkout.UserID, checkout.CustomerID, checkout.SubscriptionID)

	case core.EventSubscriptionUpdated, core.EventSubscriptionDeleted:
		sub := event.Subscription
		if sub == nil {
			return false, nil
		}
		return true, s.entitlements.ApplySubscriptionStatusChange(ctx, sub.SubscriptionID, sub.Status, sub.CustomerID, sub.CurrentPeriodEnd)

	default:
		return false, nil
	}
}

// ledger failures only cost us an idempotent re-apply, so they are logged, not returned
func (s *BillingService) alreadyApplied(ctx context.Context, eventID string) bool {
	if s.ledger == nil || eventID == "" {
		return false
	}
	seen, err := s.ledger.Seen(ctx, eventID)
	if err != nil {
		s.log.Warn("event ledger lookup failed", "eventId", eventID, "error", err)
		return false
	}
	return seen
}

func (s *BillingService) markApplied(ctx context.Context, eventID string) {
	if s.ledger == nil || eventID == "" {
		return
	}
	if err := s.ledger.Mark(ctx, eventID); err != nil {
		s.log.Warn("event ledger mark failed", "eventId", eventID, "error", err)
	}
}
