// Package textgen talks to the upstream text generation services.
package textgen

import (
	"context"
	"fmt"
	"strings"

	"promptagent/internal/domain"
	"promptagent/internal/prompts"
)

const (
	openAIProviderName = "openai"
	geminiProviderName = "gemini"
	staticProviderName = "static"
)

// Request is a single text generation call.
type Request struct {
	Model       string
	Messages    []prompts.Message
	MaxTokens   int
	Temperature *float64
}

// Generator turns a composed prompt into text. Errors wrap domain.ErrProviderFailure.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

func providerError(provider, reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s %s", domain.ErrProviderFailure, provider, reason)
	}
	return fmt.Errorf("%w: %s %s: %v", domain.ErrProviderFailure, provider, reason, err)
}

// StaticGenerator echoes a deterministic reply. It is used in development when
// no provider key is configured and in tests.
type StaticGenerator struct{}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (s *StaticGenerator) Name() string { return staticProviderName }

func (s *StaticGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", providerError(staticProviderName, "context", err)
	}
	last := ""
	if n := len(req.Messages); n > 0 {
		last = req.Messages[n-1].Content
	}
	first := strings.SplitN(strings.TrimSpace(last), "\n", 2)[0]
	return fmt.Sprintf("[%s] %s", req.Model, first), nil
}

var _ Generator = (*StaticGenerator)(nil)
