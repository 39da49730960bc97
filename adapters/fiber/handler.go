package fiber

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/kalma/core"
)

const (
	headerStripeSignature = "Stripe-Signature"
	internalErrorMessage  = "internal error"
)

// handleListContent returns a handler for the content endpoint
func (a *Adapter) handleListContent(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		flow, err := core.ParseFlow(c.Query("flow"))
		if err != nil {
			return a.handleError(c, err)
		}
		return a.listContent(c, journal, flow)
	}
}

// listFlow serves the fixed-flow aliases of the content endpoint
func listFlow(flow core.Flow) func(*Adapter, core.JournalHandler) fiber.Handler {
	return func(a *Adapter, journal core.JournalHandler) fiber.Handler {
		return func(c fiber.Ctx) error {
			return a.listContent(c, journal, flow)
		}
	}
}

func (a *Adapter) listContent(c fiber.Ctx, journal core.JournalHandler, flow core.Flow) error {
	items, err := journal.ListContent(c.Context(), flow)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"items": items})
}

// handleRecordAnswer returns a handler for the session endpoint
func (a *Adapter) handleRecordAnswer(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.RecordAnswerInput
		if err := c.Bind().Body(&input); err != nil {
			return a.handleError(c, core.ErrInvalidRequestBody)
		}

		if err := journal.RecordAnswer(c.Context(), input); err != nil {
			return a.handleError(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
	}
}

// handleRecordCalmness returns a handler for the calmness endpoint
func (a *Adapter) handleRecordCalmness(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.RecordCalmnessInput
		if err := c.Bind().Body(&input); err != nil {
			return a.handleError(c, core.ErrInvalidRequestBody)
		}

		if err := journal.RecordCalmness(c.Context(), input); err != nil {
			return a.handleError(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
	}
}

// handleHistory returns a handler for the history endpoint.
// A missing or malformed limit falls back to the default page size.
func (a *Adapter) handleHistory(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit"))

		items, err := journal.History(c.Context(), c.Query("userId"), limit)
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"items": items})
	}
}

func (a *Adapter) handleInsights(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		insights, err := journal.Insights(c.Context(), c.Query("userId"))
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(http.StatusOK).JSON(insights)
	}
}

func (a *Adapter) handleWeekly(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		report, err := journal.Weekly(c.Context(), c.Query("userId"))
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(http.StatusOK).JSON(report)
	}
}

func (a *Adapter) handleAnswers(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		answers, err := journal.Answers(c.Context(), c.Query("userId"))
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"answers": answers})
	}
}

func (a *Adapter) handleEntitlement(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		ent, err := journal.Entitlement(c.Context(), c.Query("userId"))
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(http.StatusOK).JSON(ent)
	}
}

// handleDeleteUser returns a handler for the bulk erasure endpoint
func (a *Adapter) handleDeleteUser(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.UserInput
		if err := c.Bind().Body(&input); err != nil {
			return a.handleError(c, core.ErrInvalidRequestBody)
		}

		result, err := journal.EraseUser(c.Context(), input.UserID)
		if err != nil {
			return a.handleError(c, err)
		}

		a.log.Info("user data erased", "userId", input.UserID,
			"sessions", result.Sessions, "summaries", result.Summaries)
		return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true, "deleted": result})
	}
}

func (a *Adapter) handleCheckout(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.CheckoutInput
		if err := c.Bind().Body(&input); err != nil {
			return a.handleError(c, core.ErrInvalidRequestBody)
		}

		url, err := journal.StartCheckout(c.Context(), input)
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"url": url})
	}
}

// handleWebhook passes the raw body on untouched; signature verification needs the exact bytes
func (a *Adapter) handleWebhook(journal core.JournalHandler) fiber.Handler {
	return func(c fiber.Ctx) error {
		payload := append([]byte(nil), c.Body()...)

		if err := journal.HandleWebhook(c.Context(), payload, c.Get(headerStripeSignature)); err != nil {
			return a.handleError(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"received": true})
	}
}

// handleError maps journal errors to HTTP responses.
// Upstream failures are logged and answered with a generic message.
func (a *Adapter) handleError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	message := err.Error()

	if status == http.StatusInternalServerError && !errors.Is(err, core.ErrBillingNotConfigured) {
		a.log.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"requestId", requestIDFrom(c),
			"error", err,
		)
		message = internalErrorMessage
	}

	return c.Status(status).JSON(core.ErrorResponse{Error: message})
}

// mapErrorToStatus maps core error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, core.ErrUserIDRequired),
		errors.Is(err, core.ErrSessionIDRequired),
		errors.Is(err, core.ErrInvalidFlow),
		errors.Is(err, core.ErrInvalidStep),
		errors.Is(err, core.ErrInvalidCalmness),
		errors.Is(err, core.ErrInvalidPlan),
		errors.Is(err, core.ErrInvalidRequestBody),
		errors.Is(err, core.ErrMissingSignature),
		errors.Is(err, core.ErrInvalidSignature):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
