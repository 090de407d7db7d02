package llm

import (
	"context"
	"fmt"
	"strings"
)

// Client sends one prompt to a provider and returns the raw JSON text
type Client interface {
	GenerateJSON(ctx context.Context, systemPrompt, prompt string, tier ModelTier) (string, error)
	// GetModel reports which model serves tier
	GetModel(tier ModelTier) string
	Provider() Provider
	Close() error
}

// NewClient builds the client for config.Provider. A nil config means the
// Gemini defaults. A blank key or unsupported provider is a ConfigError.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &ConfigError{Message: fmt.Sprintf("no API key configured for provider %q", config.Provider)}
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey), nil
	default:
		return nil, &ConfigError{Message: fmt.Sprintf("unsupported provider %q", config.Provider)}
	}
}

// modelFor resolves the model of tier or reports a ConfigError
func modelFor(config *Config, tier ModelTier) (string, error) {
	model := config.GetModel(tier)
	if model == "" {
		return "", &ConfigError{Message: fmt.Sprintf("no %s model configured for tier %s", config.Provider, tier)}
	}
	return model, nil
}
