package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lborres/kalma/core"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Requirement: RecordAnswer validates input before writing anything.
func TestRecorderService_RecordAnswer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   core.RecordAnswerInput
		wantErr error
	}{
		{
			name:    "missing session id",
			input:   core.RecordAnswerInput{UserID: "u1", Flow: core.FlowDaily},
			wantErr: core.ErrSessionIDRequired,
		},
		{
			name:    "blank user id",
			input:   core.RecordAnswerInput{SessionID: "s1", UserID: "   ", Flow: core.FlowDaily},
			wantErr: core.ErrUserIDRequired,
		},
		{
			name:    "unknown flow",
			input:   core.RecordAnswerInput{SessionID: "s1", UserID: "u1", Flow: "weekly"},
			wantErr: core.ErrInvalidFlow,
		},
		{
			name:    "negative step",
			input:   core.RecordAnswerInput{SessionID: "s1", UserID: "u1", Flow: core.FlowDaily, Step: -1},
			wantErr: core.ErrInvalidStep,
		},
	}

	for _, test := range tests {
		test := test // capture range variable
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			storage := NewFakeStorage()
			recorder := NewRecorderService(storage, storage, fixedClock(testNow))

			// Act
			err := recorder.RecordAnswer(context.Background(), test.input)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("RecordAnswer() error = %v, want %v", err, test.wantErr)
			}
			if storage.answerCount() != 0 {
				t.Errorf("no answer should be stored on validation failure")
			}
			if storage.summary("s1") != nil {
				t.Errorf("no summary should be written on validation failure")
			}
		})
	}
}

// Requirement: answersCount is step+1 and lastStep is step after each answer;
// createdAt is kept from the first write.
func TestRecorderService_RecordAnswer_RollsSummaryForward(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	clock := testNow
	recorder := NewRecorderService(storage, storage, func() time.Time { return clock })
	ctx := context.Background()

	// Act
	for step := 0; step < 3; step++ {
		err := recorder.RecordAnswer(ctx, core.RecordAnswerInput{
			SessionID: "s1", UserID: "u1", Flow: core.FlowOnboarding,
			Step: step, ContentID: "c", Answer: "answer",
		})
		if err != nil {
			t.Fatalf("RecordAnswer() step %d error = %v", step, err)
		}
		clock = clock.Add(time.Minute)
	}

	// Assert
	summary := storage.summary("s1")
	if summary == nil {
		t.Fatal("summary should exist")
	}
	if summary.AnswersCount != 3 || summary.LastStep != 2 {
		t.Errorf("summary counts = (%d, %d), want (3, 2)", summary.AnswersCount, summary.LastStep)
	}
	if summary.Flow != core.FlowOnboarding {
		t.Errorf("summary flow = %q, want onboarding", summary.Flow)
	}
	if !summary.CreatedAt.Equal(testNow) {
		t.Errorf("createdAt = %v, want first write %v", summary.CreatedAt, testNow)
	}
	if !summary.UpdatedAt.Equal(testNow.Add(2 * time.Minute)) {
		t.Errorf("updatedAt = %v, want last write", summary.UpdatedAt)
	}
	if storage.answerCount() != 3 {
		t.Errorf("answers stored = %d, want 3", storage.answerCount())
	}
}

// Requirement: a failed answer insert does not touch the summary.
func TestRecorderService_RecordAnswer_StorageError(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	storage.createErr = errors.New("unavailable")
	recorder := NewRecorderService(storage, storage, fixedClock(testNow))

	// Act
	err := recorder.RecordAnswer(context.Background(), core.RecordAnswerInput{
		SessionID: "s1", UserID: "u1", Flow: core.FlowDaily,
	})

	// Assert
	if !errors.Is(err, storage.createErr) {
		t.Fatalf("RecordAnswer() error = %v, want wrapped storage error", err)
	}
	if storage.summary("s1") != nil {
		t.Error("summary should not be written when the answer insert fails")
	}
}

// Requirement: calmness must be an integer in [1, 5]; numeric strings are accepted.
func TestRecorderService_RecordCalmness(t *testing.T) {
	tests := []struct {
		name     string
		calmness any
		flow     core.Flow
		wantErr  error
		wantCalm int
		wantFlow core.Flow
	}{
		{name: "integer rating", calmness: 4, wantCalm: 4, wantFlow: core.FlowDaily},
		{name: "json number", calmness: float64(1), wantCalm: 1, wantFlow: core.FlowDaily},
		{name: "numeric string", calmness: "5", wantCalm: 5, wantFlow: core.FlowDaily},
		{name: "explicit onboarding flow", calmness: 3, flow: core.FlowOnboarding, wantCalm: 3, wantFlow: core.FlowOnboarding},
		{name: "zero is out of range", calmness: 0, wantErr: core.ErrInvalidCalmness},
		{name: "six is out of range", calmness: 6, wantErr: core.ErrInvalidCalmness},
		{name: "fractional", calmness: 2.5, wantErr: core.ErrInvalidCalmness},
		{name: "non numeric", calmness: "abc", wantErr: core.ErrInvalidCalmness},
		{name: "missing", calmness: nil, wantErr: core.ErrInvalidCalmness},
		{name: "invalid flow", calmness: 3, flow: "weekly", wantErr: core.ErrInvalidFlow},
	}

	for _, test := range tests {
		test := test // capture range variable
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			storage := NewFakeStorage()
			recorder := NewRecorderService(storage, storage, fixedClock(testNow))

			// Act
			err := recorder.RecordCalmness(context.Background(), core.RecordCalmnessInput{
				SessionID: "s1", UserID: "u1", Flow: test.flow, Calmness: test.calmness,
			})

			// Assert
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("RecordCalmness() error = %v, want %v", err, test.wantErr)
				}
				if storage.summary("s1") != nil {
					t.Error("nothing should be written for an invalid rating")
				}
				return
			}
			if err != nil {
				t.Fatalf("RecordCalmness() unexpected error = %v", err)
			}

			summary := storage.summary("s1")
			if summary == nil || summary.Calmness == nil {
				t.Fatal("summary calmness should be set")
			}
			if *summary.Calmness != float64(test.wantCalm) {
				t.Errorf("calmness = %v, want %d", *summary.Calmness, test.wantCalm)
			}
			if summary.Flow != test.wantFlow {
				t.Errorf("flow = %q, want %q", summary.Flow, test.wantFlow)
			}
			if summary.CalmnessAt == nil || !summary.CalmnessAt.Equal(testNow) {
				t.Errorf("calmnessAt = %v, want %v", summary.CalmnessAt, testNow)
			}
		})
	}
}

// Requirement: a calmness rating keeps the answer counters of the session.
func TestRecorderService_RecordCalmness_KeepsCounters(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	recorder := NewRecorderService(storage, storage, fixedClock(testNow))
	ctx := context.Background()
	if err := recorder.RecordAnswer(ctx, core.RecordAnswerInput{SessionID: "s1", UserID: "u1", Flow: core.FlowDaily, Step: 1}); err != nil {
		t.Fatalf("RecordAnswer() error = %v", err)
	}

	// Act
	err := recorder.RecordCalmness(ctx, core.RecordCalmnessInput{SessionID: "s1", UserID: "u1", Calmness: 2})

	// Assert
	if err != nil {
		t.Fatalf("RecordCalmness() error = %v", err)
	}
	summary := storage.summary("s1")
	if summary.AnswersCount != 2 || summary.LastStep != 1 {
		t.Errorf("counters changed to (%d, %d), want (2, 1)", summary.AnswersCount, summary.LastStep)
	}
	if summary.Calmness == nil || *summary.Calmness != 2 {
		t.Errorf("calmness = %v, want 2", summary.Calmness)
	}
}
