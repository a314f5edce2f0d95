package textgen

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"promptagent/internal/prompts"
)

// GeminiGenerator calls Gemini through the Google GenAI SDK. System messages
// become the SystemInstruction; the rest are sent as user contents.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, providerError(geminiProviderName, "new_client", err)
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) Name() string { return geminiProviderName }

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	contents, config := geminiPayload(req)
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return "", providerError(geminiProviderName, "generate_content", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", providerError(geminiProviderName, "empty_response", nil)
	}
	return text, nil
}

func geminiPayload(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	var system []string
	var contents []*genai.Content
	for _, m := range req.Messages {
		if m.Role == prompts.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	return contents, config
}

var _ Generator = (*GeminiGenerator)(nil)
