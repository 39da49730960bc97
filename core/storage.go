package core

import (
	"context"
	"time"
)

type ContentStorage interface {
	// ListContent returns the items of a flow ordered by step ascending.
	ListContent(ctx context.Context, flow Flow, activeOnly bool) ([]*ContentItem, error)
}

type AnswerStorage interface {
	CreateAnswer(ctx context.Context, a *SessionAnswer) error

	// Query methods
	GetUserAnswers(ctx context.Context, userID string, limit int) ([]*SessionAnswer, error)                   // newest first
	GetAnswersSince(ctx context.Context, userID string, flow Flow, since time.Time) ([]*SessionAnswer, error) // oldest first
}

type SummaryStorage interface {
	UpsertSummary(ctx context.Context, p *SummaryPatch) error

	// Query methods, all newest first. A limit <= 0 means no limit.
	GetUserSummaries(ctx context.Context, userID string, limit int) ([]*SessionSummary, error)
	GetSummariesSince(ctx context.Context, userID string, flow Flow, since time.Time) ([]*SessionSummary, error)
}

type UserStorage interface {
	// GetUserRecord returns ErrUserNotFound when no record exists.
	GetUserRecord(ctx context.Context, userID string) (*UserRecord, error)
	// FindUserBySubscription returns ErrUserNotFound when nothing matches.
	FindUserBySubscription(ctx context.Context, subscriptionID string) (*UserRecord, error)

	MergeUserRecord(ctx context.Context, userID string, p *UserPatch) error
}

type ErasureStorage interface {
	// EraseUserData deletes all answers and summaries of a user atomically.
	EraseUserData(ctx context.Context, userID string) (*ErasureResult, error)
}

type StorageAdapter interface {
	ContentStorage
	AnswerStorage
	SummaryStorage
	UserStorage
	ErasureStorage
}
