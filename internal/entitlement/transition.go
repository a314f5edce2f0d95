package entitlement

import (
	"time"

	"promptagent/internal/domain"
)

// Upgrade grants Pro and clears every counter and flag in one step.
//
// Callers trigger it when checkout is initiated, before the payment provider
// confirms anything. That is an optimistic grant: a client that abandons the
// checkout page keeps Pro. Deployments that need a verified grant run with
// BILLING_GRANT=webhook, which defers Upgrade to the signed webhook.
func Upgrade(s *domain.Session, now time.Time) *domain.Session {
	id := ""
	if s != nil {
		id = s.ID
	}
	return &domain.Session{ID: id, Tier: domain.TierPro, UpdatedAt: now.UTC()}
}

// Reset returns a fresh Free session for id, regardless of the prior tier.
func Reset(id string, now time.Time) *domain.Session {
	s := domain.NewSession(id)
	s.UpdatedAt = now.UTC()
	return s
}
