package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lborres/kalma/core"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 50
	MaxAnswers          = 200
)

type HistoryService struct {
	answers   core.AnswerStorage
	summaries core.SummaryStorage
}

func NewHistoryService(answers core.AnswerStorage, summaries core.SummaryStorage) *HistoryService {
	return &HistoryService{answers: answers, summaries: summaries}
}

// ClampHistoryLimit maps a requested page size into [1, MaxHistoryLimit],
// falling back to DefaultHistoryLimit for missing or non-positive values.
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// History returns the most recently updated session summaries of a user
func (s *HistoryService) History(ctx context.Context, userID string, limit int) ([]*core.SessionSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrUserIDRequired
	}

	items, err := s.summaries.GetUserSummaries(ctx, userID, ClampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if items == nil {
		items = []*core.SessionSummary{}
	}
	return items, nil
}

// Answers returns the non-empty answer texts of the user's latest answers, newest first
func (s *HistoryService) Answers(ctx context.Context, userID string) ([]string, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrUserIDRequired
	}

	records, err := s.answers.GetUserAnswers(ctx, userID, MaxAnswers)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	answers := make([]string, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Answer) == "" {
			continue
		}
		answers = append(answers, r.Answer)
	}
	return answers, nil
}
