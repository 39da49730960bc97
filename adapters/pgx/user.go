package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/kalma/core"
)

const userColumns = `user_id, is_pro, subscription_status, stripe_customer_id, stripe_subscription_id, current_period_end, pro_since`

func (a *Adapter) GetUserRecord(ctx context.Context, userID string) (*core.UserRecord, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	var r userRow
	err := a.pool.QueryRow(ctx, q, userID).Scan(r.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return r.toRecord(), nil
}

func (a *Adapter) FindUserBySubscription(ctx context.Context, subscriptionID string) (*core.UserRecord, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE stripe_subscription_id = $1 LIMIT 1`

	var r userRow
	err := a.pool.QueryRow(ctx, q, subscriptionID).Scan(r.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return r.toRecord(), nil
}

// MergeUserRecord creates or updates a user row. NULL parameters keep the stored value.
func (a *Adapter) MergeUserRecord(ctx context.Context, userID string, p *core.UserPatch) error {
	q := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, COALESCE($2, FALSE), $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			is_pro = COALESCE($2, users.is_pro),
			subscription_status = COALESCE($3, users.subscription_status),
			stripe_customer_id = COALESCE($4, users.stripe_customer_id),
			stripe_subscription_id = COALESCE($5, users.stripe_subscription_id),
			current_period_end = COALESCE($6, users.current_period_end),
			pro_since = COALESCE(users.pro_since, $7)`

	_, err := a.pool.Exec(ctx, q, userID, p.IsPro, p.SubscriptionStatus, p.StripeCustomerID,
		p.StripeSubscriptionID, p.CurrentPeriodEnd, p.ProSince)
	return err
}
