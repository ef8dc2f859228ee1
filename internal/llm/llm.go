// Package llm wraps hosted chat-completion backends behind a single
// Completer interface. The decision and synthesis stages receive a Completer
// at construction time, so tests substitute a fake.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrProviderUnavailable reports that the completion backend could not be
// reached or returned no usable output. It is fatal to the current question.
var ErrProviderUnavailable = errors.New("llm: provider unavailable")

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Defaults for the OpenAI-compatible provider, which targets Groq.
const (
	DefaultModel      = "llama-3.3-70b-versatile"
	DefaultBaseURL    = "https://api.groq.com/openai/v1"
	DefaultAPIKeyEnv  = "GROQ_API_KEY"
	DefaultGeminiKey  = "GEMINI_API_KEY"
	DefaultGeminiName = "gemini-2.5-flash"
	defaultTimeout    = 60 * time.Second
)

// Request is one system+user completion call.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer produces a single completion for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Config selects and configures a provider.
type Config struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// New constructs the Completer named by cfg.Provider. The API key is read
// from the environment variable named by cfg.APIKeyEnv.
func New(ctx context.Context, cfg Config) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	switch provider {
	case ProviderOpenAI:
		if cfg.APIKeyEnv == "" {
			cfg.APIKeyEnv = DefaultAPIKeyEnv
		}
		key, err := apiKey(cfg.APIKeyEnv)
		if err != nil {
			return nil, err
		}
		if cfg.Model == "" {
			cfg.Model = DefaultModel
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultBaseURL
		}
		return NewOpenAI(key, cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	case ProviderGemini:
		if cfg.APIKeyEnv == "" {
			cfg.APIKeyEnv = DefaultGeminiKey
		}
		key, err := apiKey(cfg.APIKeyEnv)
		if err != nil {
			return nil, err
		}
		if cfg.Model == "" || cfg.Model == DefaultModel {
			cfg.Model = DefaultGeminiName
		}
		return NewGemini(ctx, key, cfg.Model, cfg.BaseURL, cfg.Timeout)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

func apiKey(env string) (string, error) {
	key := strings.TrimSpace(os.Getenv(env))
	if key == "" {
		return "", fmt.Errorf("llm: missing API key in env %s", env)
	}
	return key, nil
}
