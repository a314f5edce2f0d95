// Package billing starts Pro checkouts and reads payment provider webhooks.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"promptagent/internal/domain"
)

// MetadataSessionID is the subscription metadata key carrying the session id.
const MetadataSessionID = "session_id"

// Checkout starts a Pro purchase for a session and returns the redirect URL.
type Checkout interface {
	Start(ctx context.Context, sessionID string) (string, error)
}

type StripeOptions struct {
	SecretKey  string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// StripeCheckout creates subscription-mode Checkout Sessions.
type StripeCheckout struct {
	priceID    string
	successURL string
	cancelURL  string
	newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewStripeCheckout(opts StripeOptions) (*StripeCheckout, error) {
	if strings.TrimSpace(opts.SecretKey) == "" || strings.TrimSpace(opts.PriceID) == "" {
		return nil, errors.New("stripe secret key and price id are required")
	}
	client := session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: opts.SecretKey}
	return &StripeCheckout{
		priceID:    opts.PriceID,
		successURL: opts.SuccessURL,
		cancelURL:  opts.CancelURL,
		newSession: client.New,
	}, nil
}

func (c *StripeCheckout) Start(ctx context.Context, sessionID string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(sessionID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{MetadataSessionID: sessionID},
		},
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
	}
	params.Context = ctx

	sess, err := c.newSession(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCheckoutFailure, err)
	}
	if sess == nil || sess.URL == "" {
		return "", fmt.Errorf("%w: empty checkout url", domain.ErrCheckoutFailure)
	}
	return sess.URL, nil
}

// StaticCheckout returns a fixed URL. It stands in for Stripe in development.
type StaticCheckout struct {
	url string
}

func NewStaticCheckout(url string) *StaticCheckout {
	return &StaticCheckout{url: url}
}

func (c *StaticCheckout) Start(context.Context, string) (string, error) {
	return c.url, nil
}

var (
	_ Checkout = (*StripeCheckout)(nil)
	_ Checkout = (*StaticCheckout)(nil)
)
