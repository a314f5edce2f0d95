package domain

import "time"

// Tier enumerates entitlement levels of a session.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// FeatureKey identifies a generation feature exposed to clients.
type FeatureKey string

const (
	FeatureGenerate       FeatureKey = "generate"
	FeatureRegenerate     FeatureKey = "regenerate"
	FeatureDailyPost      FeatureKey = "daily_post"
	FeatureRandomCaption  FeatureKey = "random_caption"
	FeatureRewriteCaption FeatureKey = "rewrite_caption"
	FeatureWeeklyPlan     FeatureKey = "weekly_plan"
	FeatureClientReply    FeatureKey = "client_reply"
	FeatureTweakHelper    FeatureKey = "tweak_helper"
)

// DateLayout is the layout of DailyFlagDate and of the "today" value used by the policy.
const DateLayout = "2006-01-02"

// Session is the per-client entitlement and usage state.
type Session struct {
	ID            string              `json:"id"`
	Tier          Tier                `json:"tier"`
	UsageCount    int                 `json:"usage_count"`
	DailyFlagDate string              `json:"daily_flag_date,omitempty"`
	SingleUse     map[FeatureKey]bool `json:"single_use,omitempty"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// NewSession returns a fresh Free session.
func NewSession(id string) *Session {
	return &Session{ID: id, Tier: TierFree}
}

// IsPro reports whether the session holds the Pro tier.
func (s *Session) IsPro() bool {
	return s != nil && s.Tier == TierPro
}

// UsedSingle reports whether the single-use flag for key is set.
func (s *Session) UsedSingle(key FeatureKey) bool {
	if s == nil || s.SingleUse == nil {
		return false
	}
	return s.SingleUse[key]
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.SingleUse != nil {
		c.SingleUse = make(map[FeatureKey]bool, len(s.SingleUse))
		for k, v := range s.SingleUse {
			c.SingleUse[k] = v
		}
	}
	return &c
}

// Today formats t as the UTC calendar date used for daily gates.
func Today(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// UsageSnapshot describes remaining allowance. Pro sessions report Unlimited.
type UsageSnapshot struct {
	Count     int  `json:"count"`
	Limit     int  `json:"limit"`
	Unlimited bool `json:"unlimited,omitempty"`
}
