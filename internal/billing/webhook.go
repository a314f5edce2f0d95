package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// EventKind is what a verified webhook asks the gateway to do.
type EventKind int

const (
	EventIgnored EventKind = iota
	EventUpgrade
	EventCancel
)

// ErrInvalidSignature is returned when the payload fails verification.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// WebhookEvent is the part of a provider event the gateway acts on.
type WebhookEvent struct {
	Kind      EventKind
	SessionID string
	Type      string
}

// ParseWebhook verifies payload against secret and extracts the session id.
// Events the gateway does not act on come back as EventIgnored.
func ParseWebhook(payload []byte, signature, secret string) (WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := WebhookEvent{Type: string(event.Type)}
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return out, fmt.Errorf("decode checkout session: %w", err)
		}
		out.SessionID = sess.ClientReferenceID
		if out.SessionID == "" {
			out.SessionID = sess.Metadata[MetadataSessionID]
		}
		out.Kind = EventUpgrade
	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return out, fmt.Errorf("decode subscription: %w", err)
		}
		out.SessionID = sub.Metadata[MetadataSessionID]
		out.Kind = EventCancel
	default:
		return out, nil
	}
	if out.SessionID == "" {
		return out, errors.New("webhook event carries no session id")
	}
	return out, nil
}
