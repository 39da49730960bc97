package fiber

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/lborres/kalma/core"
	"github.com/lborres/kalma/pkg/logger"
	"github.com/lborres/kalma/pkg/metrics"
	"github.com/lborres/kalma/services"
)

const (
	defaultRateLimitRPS   = 20
	defaultRateLimitBurst = 40
)

// Options tunes the adapter. Zero values select defaults.
type Options struct {
	Logger         *logger.Logger
	RateLimitRPS   float64
	RateLimitBurst int
	// DisableRateLimit turns the per-IP limiter off, mostly for tests
	DisableRateLimit bool
}

type Adapter struct {
	app     *fiber.App
	log     *logger.Logger
	limiter *RateLimiter
}

var _ core.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App, opts Options) *Adapter {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	a := &Adapter{app: app, log: log.With("adapter", "fiber")}
	if !opts.DisableRateLimit {
		rps, burst := opts.RateLimitRPS, opts.RateLimitBurst
		if rps <= 0 {
			rps = defaultRateLimitRPS
		}
		if burst <= 0 {
			burst = defaultRateLimitBurst
		}
		a.limiter = NewRateLimiter(rps, burst, a.log)
	}
	return a
}

// handlerFactories maps operation ids of the endpoint table to Fiber handlers
var handlerFactories = map[string]func(*Adapter, core.JournalHandler) fiber.Handler{
	services.OpListContent:        (*Adapter).handleListContent,
	services.OpListOnboarding:     listFlow(core.FlowOnboarding),
	services.OpListDaily:          listFlow(core.FlowDaily),
	services.OpRecordAnswer:       (*Adapter).handleRecordAnswer,
	services.OpRecordCalmness:     (*Adapter).handleRecordCalmness,
	services.OpGetHistory:         (*Adapter).handleHistory,
	services.OpGetInsights:        (*Adapter).handleInsights,
	services.OpGetWeekly:          (*Adapter).handleWeekly,
	services.OpGetAnswers:         (*Adapter).handleAnswers,
	services.OpGetEntitlement:     (*Adapter).handleEntitlement,
	services.OpDeleteUser:         (*Adapter).handleDeleteUser,
	services.OpStartCheckout:      (*Adapter).handleCheckout,
	services.OpHandleStripeEvents: (*Adapter).handleWebhook,
}

func (a *Adapter) RegisterRoutes(handler core.JournalHandler, basePath string) error {
	if handler == nil {
		return fmt.Errorf("journal handler is required")
	}

	a.app.Use(recover.New())
	a.app.Use(requestID())
	a.app.Use(a.accessLog())
	a.app.Use(observeMetrics())

	// Operational routes
	a.app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	a.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := a.app.Group(basePath)
	if a.limiter != nil {
		api.Use(a.limiter.Handler())
	}

	for _, ep := range services.NewEndpointRegistry().Endpoints() {
		factory, ok := handlerFactories[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no handler for operation %s (%s %s)", ep.Metadata.OperationID, ep.Method, ep.Path)
		}
		api.Add([]string{ep.Method}, ep.Path, factory(a, handler))
	}

	return nil
}
