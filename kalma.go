package kalma

import (
	"time"

	"github.com/lborres/kalma/core"
	"github.com/lborres/kalma/pkg/cache"
	"github.com/lborres/kalma/pkg/logger"
	"github.com/lborres/kalma/services"
)

// interfaces
type (
	StorageAdapter = core.StorageAdapter
	HTTPAdapter    = core.HTTPAdapter
	BillingGateway = core.BillingGateway
	EventLedger    = core.EventLedger
	JournalHandler = core.JournalHandler
)

// structs
type (
	Kalma         = core.Kalma
	Config        = core.Config
	BillingConfig = core.BillingConfig
)

type (
	ContentItem    = core.ContentItem
	SessionAnswer  = core.SessionAnswer
	SessionSummary = core.SessionSummary
	UserRecord     = core.UserRecord
	Entitlement    = core.Entitlement
	Insights       = core.Insights
	WeeklyReport   = core.WeeklyReport
	ErasureResult  = core.ErasureResult
)

// inputs
type (
	RecordAnswerInput   = core.RecordAnswerInput
	RecordCalmnessInput = core.RecordCalmnessInput
	CheckoutInput       = core.CheckoutInput
)

const (
	defaultBasePath  = "/api"
	defaultLedgerTTL = 72 * time.Hour
)

var (
	ErrUserIDRequired    = core.ErrUserIDRequired
	ErrSessionIDRequired = core.ErrSessionIDRequired
	ErrInvalidFlow       = core.ErrInvalidFlow
	ErrInvalidCalmness   = core.ErrInvalidCalmness
	ErrInvalidPlan       = core.ErrInvalidPlan
)

var (
	ErrMissingSignature = core.ErrMissingSignature
	ErrInvalidSignature = core.ErrInvalidSignature
)

var (
	ErrDBAdapterRequired    = core.ErrDBAdapterRequired
	ErrHTTPAdapterRequired  = core.ErrHTTPAdapterRequired
	ErrBillingNotConfigured = core.ErrBillingNotConfigured
)

func New(config Config) (*Kalma, error) {
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}

	ledger := config.EventLedger
	if ledger == nil {
		ledger = cache.NewMemoryLedger(cache.Config{TTL: defaultLedgerTTL})
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	if config.Billing == nil {
		log.Warn("billing gateway not configured, billing endpoints are disabled")
	}

	journal := services.NewJournalService(services.JournalDeps{
		Storage:       config.Database,
		Billing:       config.Billing,
		BillingConfig: config.BillingConfig,
		Ledger:        ledger,
		Logger:        log,
		Clock:         config.Clock,
	})

	kalma := &Kalma{
		Journal:  journal,
		BasePath: basePath,
	}

	if err := config.HTTP.RegisterRoutes(journal, basePath); err != nil {
		return nil, err
	}

	return kalma, nil
}
