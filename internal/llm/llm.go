// Package llm provides the language-model collaborator used for answer
// generation and conversation summarization. It defines a provider-agnostic
// interface with a concrete OpenAI implementation and deterministic mocks
// for testing.
package llm

import (
	"context"
	"errors"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe. Calls may block on the
// network; callers apply their own timeout through ctx.
type LLM interface {
	// Generate produces text from a prompt using the configured model.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds common configuration options for LLM providers.
type Config struct {
	// Model specifies the model identifier (e.g., "gpt-4o")
	Model string

	// Temperature controls randomness (0.0 = deterministic)
	Temperature float32

	// MaxTokens limits the response length (0 = use provider default)
	MaxTokens int

	// APIKey is the authentication key for the provider
	APIKey string
}

// DefaultConfig returns sensible defaults for in-character answering.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o",
		Temperature: 0.3,
		MaxTokens:   1024,
	}
}
