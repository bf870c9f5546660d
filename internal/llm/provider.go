package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal chat interface the answer pipeline needs. Any
// OpenAI-compatible backend (hosted or local) satisfies it, and tests
// stub it without a network.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// New builds a Client against an OpenAI-compatible endpoint. An empty
// baseURL uses the default OpenAI API host.
func New(baseURL, apiKey string) Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
