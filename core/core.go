package core

import (
	"time"

	"github.com/lborres/kalma/pkg/logger"
)

type Config struct {
	Database StorageAdapter

	HTTP HTTPAdapter

	// Optional config
	Billing       BillingGateway // billing endpoints answer ErrBillingNotConfigured when nil
	BillingConfig BillingConfig
	EventLedger   EventLedger
	Logger        *logger.Logger
	Clock         func() time.Time
	BasePath      string
}

type Kalma struct {
	Journal  JournalHandler
	BasePath string
}
