package handlers

import (
	"context"
	"net/http"
	"time"
)

// readinessProbeID is a session id no client cookie can carry.
const readinessProbeID = "readyz-probe"

type healthResponse struct {
	Status    string `json:"status"`
	Templates int    `json:"templates,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Ready reports 503 while the session store cannot be read.
func (a *App) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := a.Pipeline.Status(ctx, readinessProbeID); err != nil {
		a.log(r).Warn().Err(err).Msg("readiness check failed")
		a.json(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: "session store unreachable"})
		return
	}
	a.json(w, http.StatusOK, healthResponse{Status: "ok", Templates: a.Templates.Len()})
}
