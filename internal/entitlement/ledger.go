package entitlement

import (
	"time"

	"promptagent/internal/domain"
)

// Commit returns the session state after a successful generation of key.
// The input is never modified; callers persist the returned copy as a whole.
// Unknown features and Pro sessions leave counters untouched. The countable
// counter never passes the Free limit, even when s was read after a racing
// writer already spent the last unit.
func (p *Policy) Commit(s *domain.Session, key domain.FeatureKey, today string, now time.Time) *domain.Session {
	next := s.Clone()
	if next == nil {
		next = domain.NewSession("")
	}
	next.UpdatedAt = now.UTC()
	class, ok := p.classes[key]
	if !ok || next.IsPro() {
		return next
	}
	if class.Countable && next.UsageCount < p.limit {
		next.UsageCount++
	}
	if class.DailyGated {
		next.DailyFlagDate = today
	}
	if class.SingleUse {
		if next.SingleUse == nil {
			next.SingleUse = make(map[domain.FeatureKey]bool)
		}
		next.SingleUse[key] = true
	}
	return next
}
