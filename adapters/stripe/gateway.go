// Package stripe implements the billing gateway on top of Stripe Checkout
// and signed webhooks.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/lborres/kalma/core"
)

const (
	metadataUserID = "userId"
	metadataPlan   = "plan"
)

type Gateway struct {
	api           *client.API
	webhookSecret string
}

var _ core.BillingGateway = (*Gateway)(nil)

// New returns nil when no secret key is configured, which leaves the
// billing endpoints answering "billing not configured".
func New(secretKey, webhookSecret string) *Gateway {
	if secretKey == "" {
		return nil
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{api: api, webhookSecret: webhookSecret}
}

// CreateCheckoutSession creates a subscription checkout tagged with the user id,
// both on the session and on the subscription it creates.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req *core.CheckoutRequest) (string, error) {
	params := &stripego.CheckoutSessionParams{
		Mode: stripego.String(string(stripego.CheckoutSessionModeSubscription)),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{Price: stripego.String(req.PriceID), Quantity: stripego.Int64(1)},
		},
		SuccessURL:        stripego.String(req.SuccessURL),
		CancelURL:         stripego.String(req.CancelURL),
		ClientReferenceID: stripego.String(req.UserID),
		Metadata:          map[string]string{metadataUserID: req.UserID, metadataPlan: string(req.Plan)},
		SubscriptionData: &stripego.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metadataUserID: req.UserID},
		},
	}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}

// ConstructEvent verifies the Stripe-Signature header against the raw payload
func (g *Gateway) ConstructEvent(payload []byte, signature string) (*core.BillingEvent, error) {
	if g.webhookSecret == "" {
		return nil, core.ErrBillingNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("failed to parse webhook event: %w", err)
	}

	return decodeEvent(event)
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

// decodeEvent reduces a verified event to the fields the billing flow uses.
// Other event types are returned without payload.
func decodeEvent(event stripego.Event) (*core.BillingEvent, error) {
	out := &core.BillingEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case core.EventCheckoutCompleted:
		var session stripego.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}

		userID := session.Metadata[metadataUserID]
		if userID == "" {
			userID = session.ClientReferenceID
		}
		checkout := &core.CheckoutCompleted{UserID: userID}
		if session.Customer != nil && session.Customer.ID != "" {
			checkout.CustomerID = stripego.String(session.Customer.ID)
		}
		if session.Subscription != nil && session.Subscription.ID != "" {
			checkout.SubscriptionID = stripego.String(session.Subscription.ID)
		}
		out.Checkout = checkout

	case core.EventSubscriptionUpdated, core.EventSubscriptionDeleted:
		var sub stripego.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to decode subscription: %w", err)
		}

		change := &core.SubscriptionChange{
			SubscriptionID: sub.ID,
			Status:         string(sub.Status),
		}
		if sub.Customer != nil && sub.Customer.ID != "" {
			change.CustomerID = stripego.String(sub.Customer.ID)
		}
		if sub.CurrentPeriodEnd > 0 {
			end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
			change.CurrentPeriodEnd = &end
		}
		out.Subscription = change
	}

	return out, nil
}
