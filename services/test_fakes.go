package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lborres/kalma/core"
)

// FakeStorage is a test-only fake implementing core.StorageAdapter.
// It keeps everything in maps and exposes error fields for behavior injection.
type FakeStorage struct {
	mu        sync.RWMutex
	content   []*core.ContentItem
	answers   []*core.SessionAnswer
	summaries map[string]*core.SessionSummary
	users     map[string]*core.UserRecord
	nextID    int

	listErr    error
	createErr  error
	upsertErr  error
	queryErr   error
	userErr    error
	mergeErr   error
	eraseErr   error
	mergeCalls int
}

var _ core.StorageAdapter = (*FakeStorage)(nil)

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		summaries: make(map[string]*core.SessionSummary),
		users:     make(map[string]*core.UserRecord),
	}
}

// ContentStorage implementation
func (f *FakeStorage) ListContent(_ context.Context, flow core.Flow, activeOnly bool) ([]*core.ContentItem, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	var items []*core.ContentItem
	for _, item := range f.content {
		if item.Flow != flow || (activeOnly && !item.Active) {
			continue
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Step < items[j].Step })
	return items, nil
}

// AnswerStorage implementation
func (f *FakeStorage) CreateAnswer(_ context.Context, a *core.SessionAnswer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	a.ID = fmt.Sprintf("answer-%d", f.nextID)
	f.answers = append(f.answers, a)
	return nil
}

func (f *FakeStorage) GetUserAnswers(_ context.Context, userID string, limit int) ([]*core.SessionAnswer, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	var out []*core.SessionAnswer
	for _, a := range f.answers {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return timeOf(out[i].CreatedAt).After(timeOf(out[j].CreatedAt)) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeStorage) GetAnswersSince(_ context.Context, userID string, flow core.Flow, since time.Time) ([]*core.SessionAnswer, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	// A nil CreatedAt stands for a stored value the codec could not resolve;
	// the store-side range filter still matched it.
	var out []*core.SessionAnswer
	for _, a := range f.answers {
		if a.UserID != userID || a.Flow != flow || (a.CreatedAt != nil && a.CreatedAt.Before(since)) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return timeOf(out[i].CreatedAt).Before(timeOf(out[j].CreatedAt)) })
	return out, nil
}

// SummaryStorage implementation
func (f *FakeStorage) UpsertSummary(_ context.Context, p *core.SummaryPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}

	s, ok := f.summaries[p.SessionID]
	if !ok {
		createdAt := p.CreatedAt
		s = &core.SessionSummary{SessionID: p.SessionID, CreatedAt: &createdAt}
		f.summaries[p.SessionID] = s
	}
	s.UserID = p.UserID
	if p.Flow != "" {
		s.Flow = p.Flow
	}
	if p.AnswersCount != nil {
		s.AnswersCount = *p.AnswersCount
	}
	if p.LastStep != nil {
		s.LastStep = *p.LastStep
	}
	if p.Calmness != nil {
		calmness := float64(*p.Calmness)
		s.Calmness = &calmness
	}
	if p.CalmnessAt != nil {
		s.CalmnessAt = p.CalmnessAt
	}
	updatedAt := p.UpdatedAt
	s.UpdatedAt = &updatedAt
	return nil
}

func (f *FakeStorage) GetUserSummaries(_ context.Context, userID string, limit int) ([]*core.SessionSummary, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	out := f.userSummaries(func(s *core.SessionSummary) bool { return s.UserID == userID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeStorage) GetSummariesSince(_ context.Context, userID string, flow core.Flow, since time.Time) ([]*core.SessionSummary, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return f.userSummaries(func(s *core.SessionSummary) bool {
		return s.UserID == userID && s.Flow == flow && (s.UpdatedAt == nil || !s.UpdatedAt.Before(since))
	}), nil
}

// userSummaries returns matching summaries newest first; callers hold the lock
func (f *FakeStorage) userSummaries(match func(*core.SessionSummary) bool) []*core.SessionSummary {
	var out []*core.SessionSummary
	for _, s := range f.summaries {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := timeOf(out[i].UpdatedAt), timeOf(out[j].UpdatedAt)
		if ti.Equal(tj) {
			return out[i].SessionID < out[j].SessionID
		}
		return ti.After(tj)
	})
	return out
}

// UserStorage implementation
func (f *FakeStorage) GetUserRecord(_ context.Context, userID string) (*core.UserRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.userErr != nil {
		return nil, f.userErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *FakeStorage) FindUserBySubscription(_ context.Context, subscriptionID string) (*core.UserRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.userErr != nil {
		return nil, f.userErr
	}
	for _, u := range f.users {
		if u.StripeSubscriptionID != nil && *u.StripeSubscriptionID == subscriptionID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorage) MergeUserRecord(_ context.Context, userID string, p *core.UserPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeCalls++
	if f.mergeErr != nil {
		return f.mergeErr
	}

	u, ok := f.users[userID]
	if !ok {
		u = &core.UserRecord{UserID: userID}
		f.users[userID] = u
	}
	if p.IsPro != nil {
		u.IsPro = *p.IsPro
	}
	if p.SubscriptionStatus != nil {
		u.SubscriptionStatus = p.SubscriptionStatus
	}
	if p.StripeCustomerID != nil {
		u.StripeCustomerID = p.StripeCustomerID
	}
	if p.StripeSubscriptionID != nil {
		u.StripeSubscriptionID = p.StripeSubscriptionID
	}
	if p.CurrentPeriodEnd != nil {
		u.CurrentPeriodEnd = p.CurrentPeriodEnd
	}
	if p.ProSince != nil {
		u.ProSince = p.ProSince
	}
	return nil
}

// ErasureStorage implementation
func (f *FakeStorage) EraseUserData(_ context.Context, userID string) (*core.ErasureResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eraseErr != nil {
		return nil, f.eraseErr
	}

	result := &core.ErasureResult{}
	kept := f.answers[:0]
	for _, a := range f.answers {
		if a.UserID == userID {
			result.Sessions++
			continue
		}
		kept = append(kept, a)
	}
	f.answers = kept

	for id, s := range f.summaries {
		if s.UserID == userID {
			delete(f.summaries, id)
			result.Summaries++
		}
	}
	return result, nil
}

// seed helpers

func (f *FakeStorage) addContent(items ...*core.ContentItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = append(f.content, items...)
}

func (f *FakeStorage) addAnswer(a *core.SessionAnswer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, a)
}

func (f *FakeStorage) addSummary(s *core.SessionSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries[s.SessionID] = s
}

func (f *FakeStorage) addUser(u *core.UserRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.UserID] = u
}

func (f *FakeStorage) user(userID string) *core.UserRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.users[userID]
}

func (f *FakeStorage) answerCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.answers)
}

func (f *FakeStorage) summary(sessionID string) *core.SessionSummary {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.summaries[sessionID]
}

func timeOf(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// FakeGateway is a test-only fake implementing core.BillingGateway.
// Signatures other than validSignature fail verification.
type FakeGateway struct {
	event       *core.BillingEvent
	checkoutURL string
	checkoutErr error
	decodeErr   error
	lastRequest *core.CheckoutRequest
}

const validSignature = "t=1,v1=valid"

var _ core.BillingGateway = (*FakeGateway)(nil)

func (g *FakeGateway) CreateCheckoutSession(_ context.Context, req *core.CheckoutRequest) (string, error) {
	g.lastRequest = req
	if g.checkoutErr != nil {
		return "", g.checkoutErr
	}
	return g.checkoutURL, nil
}

func (g *FakeGateway) ConstructEvent(_ []byte, signature string) (*core.BillingEvent, error) {
	if signature != validSignature {
		return nil, core.ErrInvalidSignature
	}
	if g.decodeErr != nil {
		return nil, g.decodeErr
	}
	return g.event, nil
}

// FakeLedger is a test-only fake implementing core.EventLedger.
type FakeLedger struct {
	mu      sync.Mutex
	seen    map[string]bool
	seenErr error
	markErr error
}

var _ core.EventLedger = (*FakeLedger)(nil)

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{seen: make(map[string]bool)}
}

func (l *FakeLedger) Seen(_ context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seenErr != nil {
		return false, l.seenErr
	}
	return l.seen[eventID], nil
}

func (l *FakeLedger) Mark(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.markErr != nil {
		return l.markErr
	}
	l.seen[eventID] = true
	return nil
}
