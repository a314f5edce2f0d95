// Package entitlement decides whether a session may use a feature and how
// session quota state changes after a successful generation.
package entitlement

import (
	"promptagent/internal/domain"
)

// DefaultFreeLimit is the number of countable generations a Free session gets.
const DefaultFreeLimit = 5

// Class names the quota classes a feature belongs to. A feature may belong to
// several classes (client replies are countable and single-use), or to none
// (quota-exempt).
type Class struct {
	Countable  bool
	DailyGated bool
	SingleUse  bool
}

// Reason explains a denial.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonUsageLimit     Reason = "usage_limit"
	ReasonDailyLimit     Reason = "daily_limit"
	ReasonLifetimeLimit  Reason = "lifetime_limit"
	ReasonUnknownFeature Reason = "unknown_feature"
)

// Decision is the verdict of Policy.Decide.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow is the permitting decision.
var Allow = Decision{Allowed: true}

// Deny returns a denying decision with reason.
func Deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Policy holds the fixed feature classification for the deployment.
type Policy struct {
	classes map[domain.FeatureKey]Class
	limit   int
}

// NewPolicy copies classes so later edits by the caller cannot reclassify a feature.
func NewPolicy(classes map[domain.FeatureKey]Class, limit int) *Policy {
	if limit <= 0 {
		limit = DefaultFreeLimit
	}
	copied := make(map[domain.FeatureKey]Class, len(classes))
	for k, v := range classes {
		copied[k] = v
	}
	return &Policy{classes: copied, limit: limit}
}

// Limit returns the Free countable limit.
func (p *Policy) Limit() int {
	return p.limit
}

// Class returns the classification for key and whether the key is known.
func (p *Policy) Class(key domain.FeatureKey) (Class, bool) {
	c, ok := p.classes[key]
	return c, ok
}

// Decide is pure: it reads s and today and never mutates anything.
// A nil session is treated as a fresh Free session.
func (p *Policy) Decide(s *domain.Session, key domain.FeatureKey, today string) Decision {
	class, ok := p.classes[key]
	if !ok {
		return Deny(ReasonUnknownFeature)
	}
	if s.IsPro() {
		return Allow
	}
	if s == nil {
		return Allow
	}
	if class.Countable && s.UsageCount >= p.limit {
		return Deny(ReasonUsageLimit)
	}
	if class.DailyGated && s.DailyFlagDate == today {
		return Deny(ReasonDailyLimit)
	}
	if class.SingleUse && s.UsedSingle(key) {
		return Deny(ReasonLifetimeLimit)
	}
	return Allow
}

// Snapshot derives the usage view of s.
func (p *Policy) Snapshot(s *domain.Session) domain.UsageSnapshot {
	if s.IsPro() {
		return domain.UsageSnapshot{Unlimited: true}
	}
	count := 0
	if s != nil {
		count = s.UsageCount
	}
	return domain.UsageSnapshot{Count: count, Limit: p.limit}
}
