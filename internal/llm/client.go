package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamesinreallife/oram-public/internal/config"
)

// ErrNoKey is returned when a hosted provider has no API key.
var ErrNoKey = errors.New("missing API key")

// Client is the interface for completion providers.
type Client interface {
	Complete(ctx context.Context, p Prompt) (*Response, error)
}

// Prompt is a role/style instruction plus the user's message.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// Response holds the result of a completion.
type Response struct {
	Content    string
	Provider   string
	TokensUsed int
}

const defaultMaxTokens = 400

func (p Prompt) maxTokens() int {
	if p.MaxTokens > 0 {
		return p.MaxTokens
	}
	return defaultMaxTokens
}

// NewClient creates a provider client from config. The offline provider
// has no client and is rejected here; callers check cfg.Offline first.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider: %w (set OPENAI_API_KEY)", ErrNoKey)
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAI(cfg.APIKey, model, cfg.BaseURL), nil
	case config.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider: %w (set ANTHROPIC_API_KEY)", ErrNoKey)
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return NewAnthropic(cfg.APIKey, model, cfg.BaseURL), nil
	case config.ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider: %w (set GEMINI_API_KEY)", ErrNoKey)
		}
		model := cfg.Model
		if model == "" {
			model = "gemini-2.0-flash"
		}
		return NewGemini(ctx, cfg.APIKey, model)
	case config.ProviderOllama:
		url := cfg.BaseURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = "llama3.2"
		}
		return NewOllama(url, model), nil
	case config.ProviderOffline:
		return nil, errors.New("offline provider has no client")
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
