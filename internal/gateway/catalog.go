// Package gateway runs every generation feature through one pipeline:
// lock the session, decide, build the prompt, pick the model, generate, commit.
package gateway

import (
	"strings"
	"time"

	"promptagent/internal/domain"
	"promptagent/internal/entitlement"
	"promptagent/internal/modelselect"
	"promptagent/internal/prompts"
)

// Input carries the request fields any feature may read.
type Input struct {
	TemplateID string
	Text       string
	Tone       string
	Tweak      string
	LastOutput string
	Platform   string
	Caption    string
	Message    string
}

// BuildContext is what a prompt builder may depend on besides the input.
type BuildContext struct {
	Composer *prompts.Composer
	Now      time.Time
	// Pick returns an index in [0, n).
	Pick func(n int) int
}

// PromptBuilder validates in and returns the prompt for a feature. It must
// not read or write session state.
type PromptBuilder func(bc BuildContext, in Input) (prompts.Prompt, error)

// Descriptor is one row of the feature catalogue.
type Descriptor struct {
	Key   domain.FeatureKey
	Class entitlement.Class
	Route modelselect.Route
	Build PromptBuilder
	// Suggestions makes the pipeline parse a numbered list from the output.
	// When SkipIfEmpty reports true the pipeline returns an empty list without
	// calling upstream.
	Suggestions bool
	SkipIfEmpty func(in Input) bool
}

// Catalog is an immutable set of descriptors keyed by feature.
type Catalog struct {
	byKey map[domain.FeatureKey]Descriptor
	order []domain.FeatureKey
}

func NewCatalog(descriptors ...Descriptor) *Catalog {
	c := &Catalog{byKey: make(map[domain.FeatureKey]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, dup := c.byKey[d.Key]; !dup {
			c.order = append(c.order, d.Key)
		}
		c.byKey[d.Key] = d
	}
	return c
}

// Lookup returns the descriptor for key.
func (c *Catalog) Lookup(key domain.FeatureKey) (Descriptor, bool) {
	d, ok := c.byKey[key]
	return d, ok
}

// Keys returns feature keys in registration order.
func (c *Catalog) Keys() []domain.FeatureKey {
	return append([]domain.FeatureKey(nil), c.order...)
}

// Classes derives the entitlement classification table.
func (c *Catalog) Classes() map[domain.FeatureKey]entitlement.Class {
	out := make(map[domain.FeatureKey]entitlement.Class, len(c.byKey))
	for k, d := range c.byKey {
		out[k] = d.Class
	}
	return out
}

// Routes derives the model route table.
func (c *Catalog) Routes() map[domain.FeatureKey]modelselect.Route {
	out := make(map[domain.FeatureKey]modelselect.Route, len(c.byKey))
	for k, d := range c.byKey {
		out[k] = d.Route
	}
	return out
}

func premium(maxTokens int, temp float64) modelselect.Route {
	return modelselect.Route{Capability: modelselect.Premium, MaxTokens: maxTokens, Temperature: modelselect.Temp(temp)}
}

// DefaultCatalog is the deployed feature set.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Descriptor{
			Key:   domain.FeatureGenerate,
			Class: entitlement.Class{Countable: true},
			Route: modelselect.Route{
				TierSensitive:  true,
				Capability:     modelselect.Premium,
				FreeCapability: modelselect.Standard,
				MaxTokens:      600,
				Temperature:    modelselect.Temp(0.7),
			},
			Build: buildGenerate,
		},
		Descriptor{
			Key:   domain.FeatureRegenerate,
			Class: entitlement.Class{Countable: true},
			Route: premium(600, 0.8),
			Build: func(_ BuildContext, in Input) (prompts.Prompt, error) {
				if blank(in.LastOutput) {
					return prompts.Prompt{}, missingField("last_output")
				}
				return prompts.Regenerate(in.LastOutput, in.Tweak), nil
			},
		},
		Descriptor{
			Key:   domain.FeatureDailyPost,
			Class: entitlement.Class{DailyGated: true},
			Route: premium(300, 0.8),
			Build: func(bc BuildContext, _ Input) (prompts.Prompt, error) {
				return prompts.DailyPost(bc.Now), nil
			},
		},
		Descriptor{
			Key:   domain.FeatureRandomCaption,
			Class: entitlement.Class{Countable: true},
			Route: premium(200, 0.9),
			Build: func(bc BuildContext, in Input) (prompts.Prompt, error) {
				topic := prompts.CaptionTopics[bc.Pick(len(prompts.CaptionTopics))]
				return prompts.RandomCaption(in.Platform, topic), nil
			},
		},
		Descriptor{
			Key:   domain.FeatureRewriteCaption,
			Class: entitlement.Class{Countable: true},
			Route: premium(200, 0.7),
			Build: func(_ BuildContext, in Input) (prompts.Prompt, error) {
				if blank(in.Caption) {
					return prompts.Prompt{}, missingField("caption")
				}
				return prompts.RewriteCaption(in.Caption, in.Platform), nil
			},
		},
		Descriptor{
			Key:   domain.FeatureWeeklyPlan,
			Class: entitlement.Class{Countable: true},
			Route: premium(700, 0.7),
			Build: func(_ BuildContext, _ Input) (prompts.Prompt, error) {
				return prompts.WeeklyPlan(), nil
			},
		},
		Descriptor{
			Key:   domain.FeatureClientReply,
			Class: entitlement.Class{Countable: true, SingleUse: true},
			Route: premium(400, 0.6),
			Build: func(_ BuildContext, in Input) (prompts.Prompt, error) {
				if blank(in.Message) {
					return prompts.Prompt{}, missingField("message")
				}
				return prompts.ClientReply(in.Message, in.Tone), nil
			},
		},
		Descriptor{
			Key:   domain.FeatureTweakHelper,
			Route: premium(150, 0.5),
			Build: func(_ BuildContext, in Input) (prompts.Prompt, error) {
				return prompts.TweakSuggestions(in.Text), nil
			},
			Suggestions: true,
			SkipIfEmpty: func(in Input) bool { return blank(in.Text) },
		},
	)
}

func buildGenerate(bc BuildContext, in Input) (prompts.Prompt, error) {
	if blank(in.TemplateID) {
		return prompts.Prompt{}, missingField("template_id")
	}
	p, err := bc.Composer.Compose(in.TemplateID, in.Text, in.Tone)
	if err != nil {
		return prompts.Prompt{}, &ValidationError{Field: "template_id", Err: err}
	}
	return p, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
