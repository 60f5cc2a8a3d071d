package llm

import (
	"context"
	"fmt"

	"github.com/skillvault/skillvault-service/internal/config"
)

// NewProvider creates the Provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch cfg.Provider {
	case "openai":
		p, err = NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	case "anthropic":
		p, err = NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case "gemini":
		p, err = NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return p, nil
}
