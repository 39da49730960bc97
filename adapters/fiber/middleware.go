package fiber

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lborres/kalma/core"
	"github.com/lborres/kalma/pkg/logger"
	"github.com/lborres/kalma/pkg/metrics"
)

const (
	headerRequestID = "X-Request-ID"
	localRequestID  = "requestId"
	maxLimiters     = 10000
)

// requestID reuses an incoming X-Request-ID or assigns a fresh one
func requestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(headerRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set(headerRequestID, id)
		return c.Next()
	}
}

func requestIDFrom(c fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

// statusOf returns the status a request finished with, including errors
// that are still on their way to the app's error handler.
func statusOf(c fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return http.StatusInternalServerError
}

// routePath is the matched route pattern, keeping metric labels bounded
func routePath(c fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return "unmatched"
}

func (a *Adapter) accessLog() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := statusOf(c, err)
		kv := []interface{}{
			"method", c.Method(),
			"route", routePath(c),
			"status", status,
			"latency", time.Since(start),
			"requestId", requestIDFrom(c),
		}
		switch {
		case status >= http.StatusInternalServerError:
			a.log.Warn("request completed", kv...)
		case c.Path() == "/healthz" || c.Path() == "/metrics":
			a.log.Debug("request completed", kv...)
		default:
			a.log.Info("request completed", kv...)
		}
		return err
	}
}

func observeMetrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		done := metrics.RequestStarted()
		defer done()

		err := c.Next()
		metrics.ObserveRequest(c.Method(), routePath(c), statusOf(c, err), time.Since(start))
		return err
	}
}

// RateLimiter applies a token bucket per client IP
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

func NewRateLimiter(requestsPerSecond float64, burst int, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		log:      log,
	}
}

// getLimiter returns the limiter of a client, creating it on first use.
// The table is reset once it grows past maxLimiters.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		if len(rl.limiters) >= maxLimiters {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		key := c.IP()
		if !rl.getLimiter(key).Allow() {
			rl.log.Warn("rate limit exceeded",
				"ip", key,
				"path", c.Path(),
				"method", c.Method(),
			)
			return c.Status(http.StatusTooManyRequests).JSON(core.ErrorResponse{Error: "rate limit exceeded"})
		}
		return c.Next()
	}
}
