// Package modelselect maps a session tier and feature to generation parameters.
package modelselect

import (
	"fmt"

	"promptagent/internal/domain"
)

// Capability names a model class rather than a concrete model id, so the
// concrete ids can change per deployment without editing the route table.
type Capability string

const (
	Premium  Capability = "premium"
	Standard Capability = "standard"
)

// Route describes how a feature picks its model.
// When TierSensitive is false, every tier gets Capability.
// When true, Pro gets Capability and Free gets FreeCapability.
type Route struct {
	TierSensitive  bool
	Capability     Capability
	FreeCapability Capability
	MaxTokens      int
	Temperature    *float64
}

// Params are the parameters passed to the text generator.
type Params struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Models resolves capabilities to concrete model ids.
type Models struct {
	Premium  string
	Standard string
}

func (m Models) resolve(c Capability) (string, error) {
	switch c {
	case Premium:
		return m.Premium, nil
	case Standard:
		return m.Standard, nil
	default:
		return "", fmt.Errorf("unknown capability %q", c)
	}
}

// Selector is safe for concurrent use; it never changes after construction.
type Selector struct {
	routes map[domain.FeatureKey]Route
	models Models
}

func NewSelector(routes map[domain.FeatureKey]Route, models Models) *Selector {
	copied := make(map[domain.FeatureKey]Route, len(routes))
	for k, v := range routes {
		copied[k] = v
	}
	return &Selector{routes: copied, models: models}
}

// Select returns ErrUnknownFeature when key has no route.
func (s *Selector) Select(tier domain.Tier, key domain.FeatureKey) (Params, error) {
	route, ok := s.routes[key]
	if !ok {
		return Params{}, fmt.Errorf("%w: %s", domain.ErrUnknownFeature, key)
	}
	capability := route.Capability
	if route.TierSensitive && tier != domain.TierPro {
		capability = route.FreeCapability
	}
	model, err := s.models.resolve(capability)
	if err != nil {
		return Params{}, err
	}
	return Params{Model: model, MaxTokens: route.MaxTokens, Temperature: route.Temperature}, nil
}

// Temp is a helper for building routes with an explicit temperature.
func Temp(v float64) *float64 {
	return &v
}
