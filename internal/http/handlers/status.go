package handlers

import (
	"net/http"

	"promptagent/internal/domain"
)

type userStatusResponse struct {
	IsPro     bool                       `json:"isPro"`
	Usage     domain.UsageSnapshot       `json:"usage"`
	Daily     *bool                      `json:"daily,omitempty"`
	SingleUse map[domain.FeatureKey]bool `json:"singleUse,omitempty"`
}

func (a *App) UserStatus(w http.ResponseWriter, r *http.Request) {
	st, err := a.Pipeline.Status(r.Context(), a.sessionID(r))
	if err != nil {
		a.writeRunError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, statusBody(st.Session, st.Usage, st.DailyUsedToday))
}

func statusBody(s *domain.Session, usage domain.UsageSnapshot, dailyUsed bool) userStatusResponse {
	out := userStatusResponse{IsPro: s.IsPro(), Usage: usage}
	if !out.IsPro {
		out.Daily = &dailyUsed
		if len(s.SingleUse) > 0 {
			out.SingleUse = s.SingleUse
		}
	}
	return out
}
