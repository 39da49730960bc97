package services

import (
	"context"
	"time"

	"github.com/lborres/kalma/core"
	"github.com/lborres/kalma/pkg/logger"
)

// JournalService composes the journaling services behind a single handler
type JournalService struct {
	catalog      *CatalogService
	recorder     *RecorderService
	history      *HistoryService
	insights     *InsightsService
	entitlements *EntitlementService
	erasure      *ErasureService
	billing      *BillingService
}

// Ensure JournalService implements JournalHandler
var _ core.JournalHandler = (*JournalService)(nil)

type JournalDeps struct {
	Storage       core.StorageAdapter
	Billing       core.BillingGateway
	BillingConfig core.BillingConfig
	Ledger        core.EventLedger
	Logger        *logger.Logger
	Clock         func() time.Time
}

func NewJournalService(deps JournalDeps) *JournalService {
	now := clockOrDefault(deps.Clock)
	entitlements := NewEntitlementService(deps.Storage, now)

	return &JournalService{
		catalog:      NewCatalogService(deps.Storage),
		recorder:     NewRecorderService(deps.Storage, deps.Storage, now),
		history:      NewHistoryService(deps.Storage, deps.Storage),
		insights:     NewInsightsService(deps.Storage, deps.Storage, now),
		entitlements: entitlements,
		erasure:      NewErasureService(deps.Storage),
		billing:      NewBillingService(deps.Billing, deps.BillingConfig, deps.Ledger, entitlements, deps.Logger),
	}
}

func (s *JournalService) ListContent(ctx context.Context, flow core.Flow) ([]*core.ContentItem, error) {
	return s.catalog.ListContent(ctx, flow)
}

func (s *JournalService) RecordAnswer(ctx context.Context, input core.RecordAnswerInput) error {
	return s.recorder.RecordAnswer(ctx, input)
}

func (s *JournalService) RecordCalmness(ctx context.Context, input core.RecordCalmnessInput) error {
	return s.recorder.RecordCalmness(ctx, input)
}

func (s *JournalService) History(ctx context.Context, userID string, limit int) ([]*core.SessionSummary, error) {
	return s.history.History(ctx, userID, limit)
}

func (s *JournalService) Answers(ctx context.Context, userID string) ([]string, error) {
	return s.history.Answers(ctx, userID)
}

func (s *JournalService) Insights(ctx context.Context, userID string) (*core.Insights, error) {
	return s.insights.Insights(ctx, userID)
}

func (s *JournalService) Weekly(ctx context.Context, userID string) (*core.WeeklyReport, error) {
	return s.insights.Weekly(ctx, userID)
}

func (s *JournalService) Entitlement(ctx context.Context, userID string) (*core.Entitlement, error) {
	return s.entitlements.GetEntitlement(ctx, userID)
}

func (s *JournalService) EraseUser(ctx context.Context, userID string) (*core.ErasureResult, error) {
	return s.erasure.EraseUser(ctx, userID)
}

func (s *JournalService) StartCheckout(ctx context.Context, input core.CheckoutInput) (string, error) {
	return s.billing.StartCheckout(ctx, input)
}

func (s *JournalService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return s.billing.HandleWebhook(ctx, payload, signature)
}
