package handlers

import (
	"errors"
	"io"
	"net/http"

	"promptagent/internal/billing"
)

type subscribeResponse struct {
	URL string `json:"url"`
}

// Subscribe starts checkout. Unless DeferGrant is set, the session becomes Pro
// as soon as checkout is created, before any payment is confirmed.
func (a *App) Subscribe(w http.ResponseWriter, r *http.Request) {
	id := a.sessionID(r)
	url, err := a.Checkout.Start(r.Context(), id)
	if err != nil {
		a.log(r).Error().Err(err).Msg("checkout start failed")
		a.error(w, http.StatusInternalServerError, "checkout_failed", "failed to create checkout session")
		return
	}
	if !a.DeferGrant {
		if _, err := a.Pipeline.Upgrade(r.Context(), id); err != nil {
			a.writeRunError(w, r, err)
			return
		}
	}
	a.json(w, http.StatusOK, subscribeResponse{URL: url})
}

func (a *App) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	ev, err := billing.ParseWebhook(body, r.Header.Get("Stripe-Signature"), a.WebhookSecret)
	if err != nil {
		a.Logger.Warn().Err(err).Str("event", ev.Type).Msg("webhook rejected")
		if errors.Is(err, billing.ErrInvalidSignature) {
			a.error(w, http.StatusBadRequest, "invalid_signature", "signature verification failed")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid event payload")
		return
	}

	switch ev.Kind {
	case billing.EventUpgrade:
		_, err = a.Pipeline.Upgrade(r.Context(), ev.SessionID)
	case billing.EventCancel:
		_, err = a.Pipeline.Reset(r.Context(), ev.SessionID)
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("event", ev.Type).Str("session", ev.SessionID).Msg("webhook apply failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update session")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
