package collab

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when a node names no model.
const DefaultModel = "gpt-4o-mini"

// OpenAIGenerator produces completions through the OpenAI chat API or
// any compatible endpoint (the provider field selects a base URL).
type OpenAIGenerator struct {
	client    *openai.Client
	providers map[string]*openai.Client
	fallback  string
}

// OpenAIOption configures the generator.
type OpenAIOption func(*OpenAIGenerator)

// WithProvider registers a named OpenAI-compatible endpoint.
func WithProvider(name, baseURL, apiKey string) OpenAIOption {
	return func(g *OpenAIGenerator) {
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = baseURL
		g.providers[name] = openai.NewClientWithConfig(cfg)
	}
}

// WithDefaultModel overrides the model used when a node leaves it blank.
func WithDefaultModel(model string) OpenAIOption {
	return func(g *OpenAIGenerator) { g.fallback = model }
}

// NewOpenAIGenerator creates a generator backed by the given API key.
func NewOpenAIGenerator(apiKey string, opts ...OpenAIOption) *OpenAIGenerator {
	g := &OpenAIGenerator{
		client:    openai.NewClient(apiKey),
		providers: make(map[string]*openai.Client),
		fallback:  DefaultModel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt, model, provider string) (string, error) {
	client := g.client
	if provider != "" {
		if c, ok := g.providers[provider]; ok {
			client = c
		}
	}
	if model == "" {
		model = g.fallback
	}
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
