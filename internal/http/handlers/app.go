package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"promptagent/internal/billing"
	"promptagent/internal/domain"
	"promptagent/internal/gateway"
	"promptagent/internal/infra"
	"promptagent/internal/middleware"
	"promptagent/internal/prompts"
)

const maxBodyBytes = 64 << 10

// App holds the collaborators every handler needs.
type App struct {
	Pipeline  *gateway.Pipeline
	Templates *prompts.Registry
	Checkout  billing.Checkout
	Logger    infra.Logger

	// WebhookSecret enables POST /stripe/webhook when set.
	WebhookSecret string
	// DeferGrant defers upgrades to the verified webhook instead of
	// granting Pro when checkout starts.
	DeferGrant bool
}

func NewApp(pipeline *gateway.Pipeline, templates *prompts.Registry, checkout billing.Checkout, logger infra.Logger) *App {
	return &App{Pipeline: pipeline, Templates: templates, Checkout: checkout, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, errorResponse{Error: msg, Code: code})
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON payload")
	return false
}

func (a *App) sessionID(r *http.Request) string {
	return middleware.SessionIDFromContext(r.Context())
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	l := a.Logger.With().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("session", a.sessionID(r)).
		Logger()
	return &l
}

type blockedResponse struct {
	Blocked bool                 `json:"blocked"`
	Usage   domain.UsageSnapshot `json:"usage"`
	Reason  string               `json:"reason"`
	Error   string               `json:"error"`
}

// writeRunError maps pipeline failures onto 400, 403 and 500 responses.
func (a *App) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *gateway.ValidationError
		denied   *gateway.DeniedError
		upstream *gateway.UpstreamError
	)
	switch {
	case errors.As(err, &verr):
		a.error(w, http.StatusBadRequest, "validation_error", verr.Error())
	case errors.As(err, &denied):
		a.json(w, http.StatusForbidden, blockedResponse{
			Blocked: true,
			Usage:   denied.Usage,
			Reason:  string(denied.Reason),
			Error:   denied.Error(),
		})
	case errors.As(err, &upstream):
		a.log(r).Warn().Err(err).Str("feature", string(upstream.Feature)).Msg("generation failed")
		a.error(w, http.StatusInternalServerError, "upstream_error", upstream.Error())
	default:
		a.log(r).Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
