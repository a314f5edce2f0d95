package handlers

import (
	"context"
	"net/http"

	"promptagent/internal/domain"
)

// ResetUsage, DevSetPro and DevSetFree override entitlement for the caller's
// own session. They are only mounted when dev routes are enabled.

func (a *App) ResetUsage(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.Pipeline.Reset)
}

func (a *App) DevSetPro(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.Pipeline.Upgrade)
}

func (a *App) DevSetFree(w http.ResponseWriter, r *http.Request) {
	a.transition(w, r, a.Pipeline.Reset)
}

func (a *App) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) (*domain.Session, error)) {
	s, err := apply(r.Context(), a.sessionID(r))
	if err != nil {
		a.writeRunError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, statusBody(s, a.Pipeline.Policy().Snapshot(s), false))
}
