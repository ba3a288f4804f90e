package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Result is the raw outcome of one completion call.
type Result struct {
	Text             string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
}

// Completer is the external completion capability. It is the only operation
// in the service expected to block on network I/O; timeouts travel in ctx.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (Result, error)
}

// Config controls completer construction.
type Config struct {
	Mode    string
	APIKey  string
	BaseURL string
	Model   string
}

// NewCompleter builds a completer for the configured mode. "auto" picks the
// OpenAI-compatible client when an API key is present and the deterministic
// mock otherwise.
func NewCompleter(cfg Config) (Completer, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewOpenAICompleter(cfg), nil
		}
		return NewMockCompleter(), nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("OPENAI_API_KEY is required for openai mode")
		}
		return NewOpenAICompleter(cfg), nil
	case "mock":
		return NewMockCompleter(), nil
	default:
		return nil, fmt.Errorf("invalid LLM_MODE: %q (expected auto|openai|mock)", cfg.Mode)
	}
}
