package pgx

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/kalma/core"
	"github.com/lborres/kalma/pkg/crypto"
)

const (
	contentColumns = `id, flow, stage, step, title, content, hint, active`
	answerColumns  = `id, session_id, user_id, flow, stage, step, content_id, answer, created_at`
	summaryColumns = `session_id, user_id, flow, stage, answers_count, last_step, calmness, calmness_at, created_at, updated_at`
)

func (a *Adapter) ListContent(ctx context.Context, flow core.Flow, activeOnly bool) ([]*core.ContentItem, error) {
	q := `SELECT ` + contentColumns + ` FROM content_items
		WHERE COALESCE(NULLIF(flow, ''), stage) = $1 AND (NOT $2 OR active)
		ORDER BY step ASC`

	rows, err := a.pool.Query(ctx, q, string(flow), activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*core.ContentItem
	for rows.Next() {
		var r contentRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		items = append(items, r.toItem())
	}
	return items, rows.Err()
}

func (a *Adapter) CreateAnswer(ctx context.Context, answer *core.SessionAnswer) error {
	id, err := crypto.NewDocumentID()
	if err != nil {
		return fmt.Errorf("failed to generate answer id: %w", err)
	}

	q := `INSERT INTO session_answers (id, session_id, user_id, flow, step, content_id, answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = a.pool.Exec(ctx, q, id, answer.SessionID, answer.UserID, string(answer.Flow),
		answer.Step, answer.ContentID, answer.Answer, answer.CreatedAt)
	if err != nil {
		return err
	}

	answer.ID = id
	return nil
}

func (a *Adapter) GetUserAnswers(ctx context.Context, userID string, limit int) ([]*core.SessionAnswer, error) {
	q := `SELECT ` + answerColumns + ` FROM session_answers
		WHERE user_id = $1
		ORDER BY created_at DESC NULLS LAST`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := a.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectAnswers(rows)
}

func (a *Adapter) GetAnswersSince(ctx context.Context, userID string, flow core.Flow, since time.Time) ([]*core.SessionAnswer, error) {
	q := `SELECT ` + answerColumns + ` FROM session_answers
		WHERE user_id = $1 AND COALESCE(NULLIF(flow, ''), stage) = $2 AND created_at >= $3
		ORDER BY created_at ASC`

	rows, err := a.pool.Query(ctx, q, userID, string(flow), since)
	if err != nil {
		return nil, err
	}
	return collectAnswers(rows)
}

func collectAnswers(rows pgx.Rows) ([]*core.SessionAnswer, error) {
	defer rows.Close()

	var answers []*core.SessionAnswer
	for rows.Next() {
		var r answerRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		answers = append(answers, r.toAnswer())
	}
	return answers, rows.Err()
}

// UpsertSummary merges a patch into the summary row of a session.
// NULL parameters keep the stored value; created_at is only set on insert.
func (a *Adapter) UpsertSummary(ctx context.Context, p *core.SummaryPatch) error {
	q := `INSERT INTO session_summaries
			(session_id, user_id, flow, answers_count, last_step, calmness, calmness_at, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), COALESCE($4, 0), COALESCE($5, 0), $6, $7, $8, $9)
		ON CONFLICT (session_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			flow = COALESCE(EXCLUDED.flow, session_summaries.flow),
			answers_count = COALESCE($4, session_summaries.answers_count),
			last_step = COALESCE($5, session_summaries.last_step),
			calmness = COALESCE(EXCLUDED.calmness, session_summaries.calmness),
			calmness_at = COALESCE(EXCLUDED.calmness_at, session_summaries.calmness_at),
			created_at = COALESCE(session_summaries.created_at, EXCLUDED.created_at),
			updated_at = EXCLUDED.updated_at`

	_, err := a.pool.Exec(ctx, q, p.SessionID, p.UserID, string(p.Flow),
		p.AnswersCount, p.LastStep, p.Calmness, p.CalmnessAt, p.CreatedAt, p.UpdatedAt)
	return err
}

func (a *Adapter) GetUserSummaries(ctx context.Context, userID string, limit int) ([]*core.SessionSummary, error) {
	q := `SELECT ` + summaryColumns + ` FROM session_summaries
		WHERE user_id = $1
		ORDER BY updated_at DESC NULLS LAST`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := a.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows)
}

func (a *Adapter) GetSummariesSince(ctx context.Context, userID string, flow core.Flow, since time.Time) ([]*core.SessionSummary, error) {
	q := `SELECT ` + summaryColumns + ` FROM session_summaries
		WHERE user_id = $1 AND COALESCE(NULLIF(flow, ''), stage) = $2 AND updated_at >= $3
		ORDER BY updated_at DESC`

	rows, err := a.pool.Query(ctx, q, userID, string(flow), since)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows)
}

func collectSummaries(rows pgx.Rows) ([]*core.SessionSummary, error) {
	defer rows.Close()

	var summaries []*core.SessionSummary
	for rows.Next() {
		var r summaryRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, err
		}
		summaries = append(summaries, r.toSummary())
	}
	return summaries, rows.Err()
}

// EraseUserData removes all answers and summaries of a user in one transaction
func (a *Adapter) EraseUserData(ctx context.Context, userID string) (*core.ErasureResult, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	answers, err := tx.Exec(ctx, `DELETE FROM session_answers WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	summaries, err := tx.Exec(ctx, `DELETE FROM session_summaries WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &core.ErasureResult{
		Sessions:  int(answers.RowsAffected()),
		Summaries: int(summaries.RowsAffected()),
	}, nil
}
