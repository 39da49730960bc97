package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lborres/kalma/core"
)

const (
	week       = 7 * 24 * time.Hour
	dayKeyForm = "2006-01-02"
)

// InsightsService derives statistics from recorded sessions.
// Read-only: no operation here writes to storage.
type InsightsService struct {
	answers   core.AnswerStorage
	summaries core.SummaryStorage
	now       func() time.Time
}

func NewInsightsService(answers core.AnswerStorage, summaries core.SummaryStorage, now func() time.Time) *InsightsService {
	return &InsightsService{
		answers:   answers,
		summaries: summaries,
		now:       clockOrDefault(now),
	}
}

// Insights counts a user's sessions overall, per flow, in the last 7 days
// and per UTC calendar day. Summaries without a resolvable updatedAt count
// towards the totals only.
func (s *InsightsService) Insights(ctx context.Context, userID string) (*core.Insights, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrUserIDRequired
	}

	summaries, err := s.summaries.GetUserSummaries(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load insights: %w", err)
	}

	sevenDaysAgo := s.now().Add(-week)
	insights := &core.Insights{DayBuckets: make(map[string]int)}

	for _, summary := range summaries {
		insights.TotalSessions++

		switch summary.Flow {
		case core.FlowOnboarding:
			insights.OnboardingSessions++
		case core.FlowDaily:
			insights.DailySessions++
		}

		if summary.UpdatedAt == nil {
			continue
		}
		updatedAt := *summary.UpdatedAt
		insights.DayBuckets[updatedAt.UTC().Format(dayKeyForm)]++
		if !updatedAt.Before(sevenDaysAgo) {
			insights.Last7DaysSessions++
		}
	}

	return insights, nil
}

// Weekly compares the trailing 7 days of daily sessions with the 7 days before:
// calmness averages, the dominant word of each window, and whether answers
// keep opening with the same word.
func (s *InsightsService) Weekly(ctx context.Context, userID string) (*core.WeeklyReport, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrUserIDRequired
	}

	now := s.now()
	sevenDaysAgo := now.Add(-week)
	fourteenDaysAgo := now.Add(-2 * week)

	// Step 1: calmness from daily summaries
	summaries, err := s.summaries.GetSummariesSince(ctx, userID, core.FlowDaily, fourteenDaysAgo)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly summaries: %w", err)
	}

	var calmThis, calmPrev []float64
	for _, summary := range summaries {
		if summary.Calmness == nil || summary.UpdatedAt == nil {
			continue
		}
		switch at := *summary.UpdatedAt; {
		case !at.Before(sevenDaysAgo):
			calmThis = append(calmThis, *summary.Calmness)
		case !at.Before(fourteenDaysAgo):
			calmPrev = append(calmPrev, *summary.Calmness)
		}
	}

	// Step 2: words from daily answers
	answers, err := s.answers.GetAnswersSince(ctx, userID, core.FlowDaily, fourteenDaysAgo)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly answers: %w", err)
	}

	var textsThis, textsPrev, all []string
	for _, a := range answers {
		text := strings.TrimSpace(a.Answer)
		if text == "" {
			continue
		}
		all = append(all, text)

		if a.CreatedAt == nil {
			continue
		}
		if !a.CreatedAt.Before(sevenDaysAgo) {
			textsThis = append(textsThis, text)
		} else {
			textsPrev = append(textsPrev, text)
		}
	}

	wordThis := dominantWord(textsThis)
	wordPrev := dominantWord(textsPrev)

	return &core.WeeklyReport{
		CalmThisAvg: average(calmThis),
		CalmPrevAvg: average(calmPrev),
		Shifted:     wordThis != nil && wordPrev != nil && *wordThis != *wordPrev,
		Repeated:    hasRepetition(all),
		WordThis:    wordThis,
		WordPrev:    wordPrev,
	}, nil
}

func average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}
