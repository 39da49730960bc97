// Package firestore stores the journal in Cloud Firestore.
//
// Collections: content (read-only catalog), sessions (one document per
// answer), sessionSummaries (keyed by session id) and users (keyed by user id).
package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lborres/kalma/core"
)

const (
	contentCollection   = "content"
	answersCollection   = "sessions"
	summariesCollection = "sessionSummaries"
	usersCollection     = "users"
)

type Adapter struct {
	client *firestore.Client
}

var _ core.StorageAdapter = (*Adapter)(nil)

func New(client *firestore.Client) *Adapter {
	return &Adapter{client: client}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ListContent reads both the flow and the legacy stage field, since older
// catalog documents only carry the latter.
func (a *Adapter) ListContent(ctx context.Context, flow core.Flow, activeOnly bool) ([]*core.ContentItem, error) {
	col := a.client.Collection(contentCollection)

	seen := make(map[string]bool)
	var items []*core.ContentItem
	for _, field := range []string{"flow", "stage"} {
		docs, err := col.Where(field, "==", string(flow)).Documents(ctx).GetAll()
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if seen[doc.Ref.ID] {
				continue
			}
			seen[doc.Ref.ID] = true

			item := decodeContent(doc.Ref.ID, doc.Data())
			if item.Flow != flow || (activeOnly && !item.Active) {
				continue
			}
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Step < items[j].Step })
	return items, nil
}

func (a *Adapter) CreateAnswer(ctx context.Context, answer *core.SessionAnswer) error {
	ref, _, err := a.client.Collection(answersCollection).Add(ctx, answerFields(answer))
	if err != nil {
		return err
	}
	answer.ID = ref.ID
	return nil
}

func (a *Adapter) GetUserAnswers(ctx context.Context, userID string, limit int) ([]*core.SessionAnswer, error) {
	q := a.client.Collection(answersCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	answers := make([]*core.SessionAnswer, 0, len(docs))
	for _, doc := range docs {
		answers = append(answers, decodeAnswer(doc.Ref.ID, doc.Data()))
	}
	return answers, nil
}

// GetAnswersSince filters the flow client-side so legacy stage documents match
func (a *Adapter) GetAnswersSince(ctx context.Context, userID string, flow core.Flow, since time.Time) ([]*core.SessionAnswer, error) {
	docs, err := a.client.Collection(answersCollection).
		Where("userId", "==", userID).
		Where("createdAt", ">=", since).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	var answers []*core.SessionAnswer
	for _, doc := range docs {
		answer := decodeAnswer(doc.Ref.ID, doc.Data())
		if answer.Flow == flow {
			answers = append(answers, answer)
		}
	}
	return answers, nil
}

// UpsertSummary merges a patch into the summary document of a session.
// createdAt is only written when the document does not exist yet.
func (a *Adapter) UpsertSummary(ctx context.Context, p *core.SummaryPatch) error {
	ref := a.client.Collection(summariesCollection).Doc(p.SessionID)

	return a.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		created := false
		if err != nil {
			if !isNotFound(err) {
				return err
			}
			created = true
		}
		return tx.Set(ref, summaryFields(p, created), firestore.MergeAll)
	})
}

func (a *Adapter) GetUserSummaries(ctx context.Context, userID string, limit int) ([]*core.SessionSummary, error) {
	q := a.client.Collection(summariesCollection).
		Where("userId", "==", userID).
		OrderBy("updatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]*core.SessionSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, decodeSummary(doc.Ref.ID, doc.Data()))
	}
	return summaries, nil
}

func (a *Adapter) GetSummariesSince(ctx context.Context, userID string, flow core.Flow, since time.Time) ([]*core.SessionSummary, error) {
	docs, err := a.client.Collection(summariesCollection).
		Where("userId", "==", userID).
		Where("updatedAt", ">=", since).
		OrderBy("updatedAt", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	var summaries []*core.SessionSummary
	for _, doc := range docs {
		summary := decodeSummary(doc.Ref.ID, doc.Data())
		if summary.Flow == flow {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

func (a *Adapter) GetUserRecord(ctx context.Context, userID string) (*core.UserRecord, error) {
	doc, err := a.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return decodeUser(doc.Ref.ID, doc.Data()), nil
}

func (a *Adapter) FindUserBySubscription(ctx context.Context, subscriptionID string) (*core.UserRecord, error) {
	docs, err := a.client.Collection(usersCollection).
		Where("stripeSubscriptionId", "==", subscriptionID).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, core.ErrUserNotFound
	}
	return decodeUser(docs[0].Ref.ID, docs[0].Data()), nil
}

func (a *Adapter) MergeUserRecord(ctx context.Context, userID string, p *core.UserPatch) error {
	fields := userFields(p)
	if len(fields) == 0 {
		return nil
	}
	_, err := a.client.Collection(usersCollection).Doc(userID).Set(ctx, fields, firestore.MergeAll)
	return err
}

// EraseUserData deletes every answer and summary of a user in one transaction.
// All reads happen before the first delete, as transactions require.
func (a *Adapter) EraseUserData(ctx context.Context, userID string) (*core.ErasureResult, error) {
	answersQuery := a.client.Collection(answersCollection).Where("userId", "==", userID)
	summariesQuery := a.client.Collection(summariesCollection).Where("userId", "==", userID)

	var result core.ErasureResult
	err := a.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		answers, err := tx.Documents(answersQuery).GetAll()
		if err != nil {
			return err
		}
		summaries, err := tx.Documents(summariesQuery).GetAll()
		if err != nil {
			return err
		}

		for _, doc := range answers {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		for _, doc := range summaries {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}

		// the function may be retried, so counts are assigned rather than accumulated
		result = core.ErasureResult{Sessions: len(answers), Summaries: len(summaries)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
