package llm

import (
	"context"
	"fmt"

	"github.com/sant0-9/polish/internal/config"
)

// NewProvider creates a provider from config
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	p, err := newProvider(ctx, cfg.Provider, cfg.APIKey, cfg.Model, cfg.BaseURL, WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}
	return Limit(p, cfg.RequestsPerMinute), nil
}

// NewSandboxProvider creates the provider prompt tests run against. It
// returns nil, nil when no dedicated sandbox is configured, in which case
// tests share the main provider.
func NewSandboxProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	s := cfg.Sandbox
	if s == nil || !s.Enabled {
		return nil, nil
	}
	p, err := newProvider(ctx, s.Provider, s.APIKey, s.Model, s.BaseURL, WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("sandbox: %w", err)
	}
	return Limit(p, cfg.RequestsPerMinute), nil
}

func newProvider(ctx context.Context, name, apiKey, model, baseURL string, opts ...Option) (Provider, error) {
	switch name {
	case "gemini":
		if baseURL != "" {
			opts = append(opts, WithBaseURL(baseURL))
		}
		return NewGeminiProvider(ctx, apiKey, model, opts...)

	case "ollama":
		return NewOllamaProvider(baseURL, model, opts...), nil

	case "openai", "groq", "openrouter", "anthropic":
		if apiKey == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingAPIKey)
		}
		if baseURL != "" {
			opts = append(opts, WithBaseURL(baseURL))
		}
		switch name {
		case "openai":
			return NewOpenAIProvider(apiKey, model, opts...), nil
		case "groq":
			return NewGroqProvider(apiKey, model, opts...), nil
		case "openrouter":
			return NewOpenRouterProvider(apiKey, model, opts...), nil
		default:
			return NewAnthropicProvider(apiKey, model, opts...), nil
		}

	case "custom":
		if baseURL == "" {
			return nil, fmt.Errorf("custom provider requires base_url")
		}
		return NewCustomProvider(baseURL, apiKey, model, opts...), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}
