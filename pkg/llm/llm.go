// Package llm builds the model backend selected by configuration.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/minhyannv/workspace-agent/pkg/config"
	"github.com/minhyannv/workspace-agent/pkg/model"
	"github.com/minhyannv/workspace-agent/pkg/model/anthropic"
	"github.com/minhyannv/workspace-agent/pkg/model/openai"
)

// NewModel returns the backend for cfg.Provider. cfg is expected to be
// normalized.
func NewModel(cfg config.Config) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.New(anthropic.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model}), nil
	case config.ProviderOpenAI:
		return openai.New(openai.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model}), nil
	case config.ProviderOllama:
		return openai.New(ollamaConfig(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// ollamaConfig targets Ollama's OpenAI-compatible endpoint, which accepts
// tools and tool messages. Ollama ignores the key; the placeholder stops the
// client from falling back to OPENAI_API_KEY.
func ollamaConfig(cfg config.Config) openai.Config {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultOllamaBaseURL
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "ollama"
	}
	return openai.Config{APIKey: apiKey, BaseURL: baseURL, Model: cfg.Model}
}

// WithTimeout bounds every Complete call of m by d. A non-positive d returns
// m unchanged.
func WithTimeout(m model.Model, d time.Duration) model.Model {
	if d <= 0 {
		return m
	}
	return &timeoutModel{next: m, timeout: d}
}

type timeoutModel struct {
	next    model.Model
	timeout time.Duration
}

func (t *timeoutModel) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Complete(ctx, req)
}
