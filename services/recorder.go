package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lborres/kalma/core"
)

type RecorderService struct {
	answers   core.AnswerStorage
	summaries core.SummaryStorage
	now       func() time.Time
}

func NewRecorderService(answers core.AnswerStorage, summaries core.SummaryStorage, now func() time.Time) *RecorderService {
	return &RecorderService{
		answers:   answers,
		summaries: summaries,
		now:       clockOrDefault(now),
	}
}

// RecordAnswer stores one answered prompt and rolls the session summary forward.
//
// The answer insert and the summary upsert are not transactional; the UI
// awaits each call, so answers of one session arrive in order.
func (s *RecorderService) RecordAnswer(ctx context.Context, input core.RecordAnswerInput) error {
	// Step 1: Validate input
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		return core.ErrSessionIDRequired
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return core.ErrUserIDRequired
	}
	if !input.Flow.Valid() {
		return core.ErrInvalidFlow
	}
	if input.Step < 0 {
		return core.ErrInvalidStep
	}

	now := s.now()

	// Step 2: Append the answer
	answer := &core.SessionAnswer{
		SessionID: sessionID,
		UserID:    userID,
		Flow:      input.Flow,
		Step:      input.Step,
		ContentID: input.ContentID,
		Answer:    input.Answer,
		CreatedAt: &now,
	}
	if err := s.answers.CreateAnswer(ctx, answer); err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}

	// Step 3: Merge the summary
	answersCount := input.Step + 1
	lastStep := input.Step
	patch := &core.SummaryPatch{
		SessionID:    sessionID,
		UserID:       userID,
		Flow:         input.Flow,
		AnswersCount: &answersCount,
		LastStep:     &lastStep,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.summaries.UpsertSummary(ctx, patch); err != nil {
		return fmt.Errorf("failed to update session summary: %w", err)
	}

	return nil
}

// RecordCalmness stores a 1-5 calmness rating on the session summary.
// Invalid ratings are rejected before anything is written.
func (s *RecorderService) RecordCalmness(ctx context.Context, input core.RecordCalmnessInput) error {
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		return core.ErrSessionIDRequired
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return core.ErrUserIDRequired
	}

	calmness, err := core.ParseCalmness(input.Calmness)
	if err != nil {
		return err
	}

	flow := input.Flow
	if flow == "" {
		flow = core.FlowDaily
	}
	if !flow.Valid() {
		return core.ErrInvalidFlow
	}

	now := s.now()
	patch := &core.SummaryPatch{
		SessionID:  sessionID,
		UserID:     userID,
		Flow:       flow,
		Calmness:   &calmness,
		CalmnessAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.summaries.UpsertSummary(ctx, patch); err != nil {
		return fmt.Errorf("failed to save calmness: %w", err)
	}

	return nil
}
