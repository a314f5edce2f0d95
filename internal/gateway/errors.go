package gateway

import (
	"fmt"

	"promptagent/internal/domain"
	"promptagent/internal/entitlement"
)

// ValidationError reports a bad request. Nothing was charged.
type ValidationError struct {
	Field string
	Err   error
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Err: domain.ErrInvalidRequest}
}

func (e *ValidationError) Error() string {
	if e.Err == domain.ErrInvalidRequest {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DeniedError reports a quota denial along with the usage at the time.
type DeniedError struct {
	Feature domain.FeatureKey
	Reason  entitlement.Reason
	Usage   domain.UsageSnapshot
}

func (e *DeniedError) Error() string {
	switch e.Reason {
	case entitlement.ReasonDailyLimit:
		return "daily post already used today, upgrade to Pro for unlimited posts"
	case entitlement.ReasonLifetimeLimit:
		return "this feature can be used once on the free plan, upgrade to Pro to keep using it"
	case entitlement.ReasonUnknownFeature:
		return fmt.Sprintf("feature %q is not available", e.Feature)
	default:
		return fmt.Sprintf("free limit of %d generations reached, upgrade to Pro for unlimited use", e.Usage.Limit)
	}
}

func (e *DeniedError) Unwrap() error {
	if e.Reason == entitlement.ReasonUnknownFeature {
		return domain.ErrUnknownFeature
	}
	return domain.ErrQuotaExceeded
}

// UpstreamError reports a failed or timed out generation. Nothing was charged.
type UpstreamError struct {
	Feature domain.FeatureKey
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
