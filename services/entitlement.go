package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lborres/kalma/core"
)

const statusActive = "active"

// Subscription statuses that grant pro access
var proStatuses = map[string]bool{
	"active":   true,
	"trialing": true,
}

type EntitlementService struct {
	users core.UserStorage
	now   func() time.Time
}

func NewEntitlementService(users core.UserStorage, now func() time.Time) *EntitlementService {
	return &EntitlementService{users: users, now: clockOrDefault(now)}
}

// GetEntitlement reports the pro flag of a user; users without a record are not pro.
func (s *EntitlementService) GetEntitlement(ctx context.Context, userID string) (*core.Entitlement, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrUserIDRequired
	}

	record, err := s.users.GetUserRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return &core.Entitlement{}, nil
		}
		return nil, fmt.Errorf("failed to load entitlement: %w", err)
	}

	return &core.Entitlement{
		IsPro:              record.IsPro,
		SubscriptionStatus: record.SubscriptionStatus,
		CurrentPeriodEnd:   record.CurrentPeriodEnd,
	}, nil
}

// ApplyCheckoutCompleted marks the user pro after a successful checkout.
// Replays are harmless: every field is merged, and proSince keeps the first activation.
func (s *EntitlementService) ApplyCheckoutCompleted(ctx context.Context, userID string, customerID, subscriptionID *string) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrUserIDRequired
	}

	existing, err := s.users.GetUserRecord(ctx, userID)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return fmt.Errorf("failed to load user record: %w", err)
	}

	isPro := true
	status := statusActive
	patch := &core.UserPatch{
		IsPro:                &isPro,
		SubscriptionStatus:   &status,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: subscriptionID,
	}
	if existing == nil || existing.ProSince == nil {
		now := s.now()
		patch.ProSince = &now
	}

	if err := s.users.MergeUserRecord(ctx, userID, patch); err != nil {
		return fmt.Errorf("failed to activate pro: %w", err)
	}
	return nil
}

// ApplySubscriptionStatusChange syncs the status of a subscription onto the
// user owning it. Unknown subscriptions are ignored.
func (s *EntitlementService) ApplySubscriptionStatusChange(ctx context.Context, subscriptionID, status string, customerID *string, currentPeriodEnd *time.Time) error {
	if subscriptionID == "" {
		return nil
	}

	record, err := s.users.FindUserBySubscription(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find subscription owner: %w", err)
	}

	isPro := proStatuses[status]
	patch := &core.UserPatch{
		IsPro:              &isPro,
		SubscriptionStatus: &status,
		StripeCustomerID:   customerID,
		CurrentPeriodEnd:   currentPeriodEnd,
	}
	if err := s.users.MergeUserRecord(ctx, record.UserID, patch); err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	return nil
}
