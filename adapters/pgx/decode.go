package pgx

import (
	"time"

	"github.com/lborres/kalma/core"
)

// Rows are scanned into these structs first so that nullable columns and the
// legacy stage column are resolved in one place.

type contentRow struct {
	ID      string
	Flow    *string
	Stage   *string
	Step    int
	Title   string
	Content string
	Hint    *string
	Active  bool
}

func (r *contentRow) dest() []any {
	return []any{&r.ID, &r.Flow, &r.Stage, &r.Step, &r.Title, &r.Content, &r.Hint, &r.Active}
}

func (r *contentRow) toItem() *core.ContentItem {
	return &core.ContentItem{
		ID:      r.ID,
		Flow:    resolveFlow(r.Flow, r.Stage),
		Step:    r.Step,
		Title:   r.Title,
		Content: r.Content,
		Hint:    r.Hint,
		Active:  r.Active,
	}
}

type answerRow struct {
	ID        string
	SessionID string
	UserID    string
	Flow      *string
	Stage     *string
	Step      int
	ContentID string
	Answer    string
	CreatedAt *time.Time
}

func (r *answerRow) dest() []any {
	return []any{&r.ID, &r.SessionID, &r.UserID, &r.Flow, &r.Stage, &r.Step, &r.ContentID, &r.Answer, &r.CreatedAt}
}

func (r *answerRow) toAnswer() *core.SessionAnswer {
	return &core.SessionAnswer{
		ID:        r.ID,
		SessionID: r.SessionID,
		UserID:    r.UserID,
		Flow:      resolveFlow(r.Flow, r.Stage),
		Step:      r.Step,
		ContentID: r.ContentID,
		Answer:    r.Answer,
		CreatedAt: utcPtr(r.CreatedAt),
	}
}

type summaryRow struct {
	SessionID    string
	UserID       string
	Flow         *string
	Stage        *string
	AnswersCount int
	LastStep     int
	Calmness     *int16
	CalmnessAt   *time.Time
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
}

func (r *summaryRow) dest() []any {
	return []any{&r.SessionID, &r.UserID, &r.Flow, &r.Stage, &r.AnswersCount, &r.LastStep,
		&r.Calmness, &r.CalmnessAt, &r.CreatedAt, &r.UpdatedAt}
}

func (r *summaryRow) toSummary() *core.SessionSummary {
	s := &core.SessionSummary{
		SessionID:    r.SessionID,
		UserID:       r.UserID,
		Flow:         resolveFlow(r.Flow, r.Stage),
		AnswersCount: r.AnswersCount,
		LastStep:     r.LastStep,
		CalmnessAt:   utcPtr(r.CalmnessAt),
		CreatedAt:    utcPtr(r.CreatedAt),
		UpdatedAt:    utcPtr(r.UpdatedAt),
	}
	if r.Calmness != nil {
		calmness := float64(*r.Calmness)
		s.Calmness = &calmness
	}
	return s
}

type userRow struct {
	UserID               string
	IsPro                bool
	SubscriptionStatus   *string
	StripeCustomerID     *string
	StripeSubscriptionID *string
	CurrentPeriodEnd     *time.Time
	ProSince             *time.Time
}

func (r *userRow) dest() []any {
	return []any{&r.UserID, &r.IsPro, &r.SubscriptionStatus, &r.StripeCustomerID,
		&r.StripeSubscriptionID, &r.CurrentPeriodEnd, &r.ProSince}
}

func (r *userRow) toRecord() *core.UserRecord {
	return &core.UserRecord{
		UserID:               r.UserID,
		IsPro:                r.IsPro,
		SubscriptionStatus:   r.SubscriptionStatus,
		StripeCustomerID:     r.StripeCustomerID,
		StripeSubscriptionID: r.StripeSubscriptionID,
		CurrentPeriodEnd:     utcPtr(r.CurrentPeriodEnd),
		ProSince:             utcPtr(r.ProSince),
	}
}

func resolveFlow(flow, stage *string) core.Flow {
	var f, s string
	if flow != nil {
		f = *flow
	}
	if stage != nil {
		s = *stage
	}
	return core.ResolveFlow(f, s)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}
