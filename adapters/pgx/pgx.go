package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lborres/kalma/core"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.StorageAdapter = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// schema is applied in order by Migrate. Every statement is idempotent.
//
// flow is nullable: rows imported from the legacy document store may only
// carry the old stage column.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS content_items (
		id TEXT PRIMARY KEY,
		flow TEXT,
		stage TEXT,
		step INTEGER NOT NULL DEFAULT 0,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		hint TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS session_answers (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		flow TEXT,
		stage TEXT,
		step INTEGER NOT NULL DEFAULT 0,
		content_id TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE
	)`,
	`CREATE INDEX IF NOT EXISTS session_answers_user_created_idx
		ON session_answers (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS session_summaries (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		flow TEXT,
		stage TEXT,
		answers_count INTEGER NOT NULL DEFAULT 0,
		last_step INTEGER NOT NULL DEFAULT 0,
		calmness SMALLINT CHECK (calmness BETWEEN 1 AND 5),
		calmness_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE,
		updated_at TIMESTAMP WITH TIME ZONE
	)`,
	`CREATE INDEX IF NOT EXISTS session_summaries_user_updated_idx
		ON session_summaries (user_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		is_pro BOOLEAN NOT NULL DEFAULT FALSE,
		subscription_status TEXT,
		stripe_customer_id TEXT,
		stripe_subscription_id TEXT,
		current_period_end TIMESTAMP WITH TIME ZONE,
		pro_since TIMESTAMP WITH TIME ZONE
	)`,
	`CREATE INDEX IF NOT EXISTS users_subscription_idx ON users (stripe_subscription_id)`,
}

// Migrate creates the tables and indexes when they do not exist yet
func (a *Adapter) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i, err)
		}
	}
	return nil
}
