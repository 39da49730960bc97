package pgx

import (
	"testing"
	"time"

	"github.com/lborres/kalma/core"
)

func strPtr(s string) *string { return &s }

// Requirement: rows written before the flow rename resolve their flow from stage.
func TestResolveFlow(t *testing.T) {
	tests := []struct {
		name  string
		flow  *string
		stage *string
		want  core.Flow
	}{
		{name: "flow wins", flow: strPtr("daily"), stage: strPtr("onboarding"), want: core.FlowDaily},
		{name: "legacy stage", flow: nil, stage: strPtr("onboarding"), want: core.FlowOnboarding},
		{name: "empty flow falls back", flow: strPtr(""), stage: strPtr("daily"), want: core.FlowDaily},
		{name: "neither", want: ""},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := resolveFlow(test.flow, test.stage); got != test.want {
				t.Errorf("resolveFlow() = %q, want %q", got, test.want)
			}
		})
	}
}

// Requirement: summary rows decode nullable columns into optional fields in UTC.
func TestSummaryRow_ToSummary(t *testing.T) {
	// Arrange
	loc := time.FixedZone("UTC+2", 2*60*60)
	updated := time.Date(2024, 6, 15, 1, 30, 0, 0, loc)
	calmness := int16(4)
	row := summaryRow{
		SessionID:    "s1",
		UserID:       "u1",
		Stage:        strPtr("daily"),
		AnswersCount: 3,
		LastStep:     2,
		Calmness:     &calmness,
		UpdatedAt:    &updated,
	}

	// Act
	s := row.toSummary()

	// Assert
	if s.Flow != core.FlowDaily {
		t.Errorf("Flow = %q, want daily", s.Flow)
	}
	if s.Calmness == nil || *s.Calmness != 4 {
		t.Errorf("Calmness = %v, want 4", s.Calmness)
	}
	if s.CalmnessAt != nil || s.CreatedAt != nil {
		t.Errorf("NULL timestamps should stay nil; got calmnessAt=%v createdAt=%v", s.CalmnessAt, s.CreatedAt)
	}
	if s.UpdatedAt == nil || s.UpdatedAt.Location() != time.UTC || !s.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt = %v, want %v in UTC", s.UpdatedAt, updated)
	}
	if s.AnswersCount != 3 || s.LastStep != 2 {
		t.Errorf("counters = (%d, %d), want (3, 2)", s.AnswersCount, s.LastStep)
	}
}

// Requirement: summaries without a rating keep Calmness nil.
func TestSummaryRow_NoCalmness(t *testing.T) {
	row := summaryRow{SessionID: "s1", Flow: strPtr("onboarding")}

	s := row.toSummary()

	if s.Calmness != nil {
		t.Errorf("Calmness = %v, want nil", *s.Calmness)
	}
}

func TestAnswerRow_ToAnswer(t *testing.T) {
	// Arrange
	zero := time.Time{}
	row := answerRow{ID: "a1", SessionID: "s1", UserID: "u1", Flow: strPtr("daily"), Step: 1, Answer: "ok", CreatedAt: &zero}

	// Act
	a := row.toAnswer()

	// Assert
	if a.Flow != core.FlowDaily || a.Step != 1 || a.Answer != "ok" {
		t.Errorf("toAnswer() = %+v", a)
	}
	if a.CreatedAt != nil {
		t.Errorf("zero timestamp should decode to nil; got %v", a.CreatedAt)
	}
}

func TestContentRow_ToItem(t *testing.T) {
	row := contentRow{ID: "c1", Stage: strPtr("onboarding"), Step: 2, Title: "Hi", Content: "Body", Hint: strPtr("tip"), Active: true}

	item := row.toItem()

	if item.Flow != core.FlowOnboarding || item.Step != 2 || !item.Active {
		t.Errorf("toItem() = %+v", item)
	}
	if item.Hint == nil || *item.Hint != "tip" {
		t.Errorf("Hint = %v, want tip", item.Hint)
	}
}

func TestUserRow_ToRecord(t *testing.T) {
	end := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	row := userRow{UserID: "u1", IsPro: true, SubscriptionStatus: strPtr("trialing"), CurrentPeriodEnd: &end}

	rec := row.toRecord()

	if !rec.IsPro || rec.SubscriptionStatus == nil || *rec.SubscriptionStatus != "trialing" {
		t.Errorf("toRecord() = %+v", rec)
	}
	if rec.CurrentPeriodEnd == nil || !rec.CurrentPeriodEnd.Equal(end) {
		t.Errorf("CurrentPeriodEnd = %v, want %v", rec.CurrentPeriodEnd, end)
	}
	if rec.ProSince != nil {
		t.Errorf("ProSince = %v, want nil", rec.ProSince)
	}
}

// Requirement: the migration creates every table the adapter queries.
func TestSchema_CoversTables(t *testing.T) {
	tables := []string{"content_items", "session_answers", "session_summaries", "users"}
	for _, table := range tables {
		found := false
		for _, stmt := range schema {
			if containsTable(stmt, table) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("schema has no CREATE TABLE for %s", table)
		}
	}
}

func containsTable(stmt, table string) bool {
	prefix := "CREATE TABLE IF NOT EXISTS " + table + " ("
	return len(stmt) >= len(prefix) && stmt[:len(prefix)] == prefix
}
