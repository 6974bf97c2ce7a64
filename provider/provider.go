package provider

import (
	"context"
	"errors"

	"answerhub/config"
	openai_provider "answerhub/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// Message represents a message in a conversation
type Message = openai_provider.Message

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	// ChatCompletion returns the full assistant reply for the given messages.
	ChatCompletion(ctx context.Context, messages []Message) (string, error)
	// StreamChatCompletion calls fn for every token delta. fn returning an
	// error aborts the stream.
	StreamChatCompletion(ctx context.Context, messages []Message, fn func(delta string) error) error
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch Client(cfg.Provider) {
	case OpenAI, "":
		if cfg.APIKey == "" {
			return nil, errors.New("llm api key not set")
		}
		return openai_provider.NewOpenAIClient(
			cfg.APIKey,
			cfg.BaseURL,
			cfg.ChatModel,
			cfg.EmbeddingModel,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
