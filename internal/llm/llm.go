// Package llm provides an abstraction layer for the external completion
// services the fallback responder can talk to.
//
// The package defines a Provider interface so the engine can swap between
// Groq (the default), OpenAI, Anthropic, and a local Ollama instance without
// changing consuming code. The fallback call is a single synchronous
// round-trip; there is no streaming, retry, or timeout here — callers
// wanting responsiveness wrap the call with their own context deadline.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/salescope-dev/salescope/internal/config"
	"github.com/salescope-dev/salescope/internal/llm/ollama"
)

// Provider defines the interface for completion-service interactions.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Chat sends messages and returns a complete response.
	// The context can be used to cancel the request.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// Heartbeat checks if the provider is reachable and healthy.
	Heartbeat(ctx context.Context) error
}

// ModelChecker is implemented by providers that can report whether a model
// has been pulled locally. Cloud providers do not implement it.
type ModelChecker interface {
	ModelAvailable(ctx context.Context, model string) (bool, error)
}

// Message represents a single message in a conversation.
type Message struct {
	// Role identifies the message sender: "system" or "user"
	Role string

	// Content is the message text
	Content string
}

// ChatOptions configures chat behavior.
// All fields are optional; nil opts uses provider defaults.
type ChatOptions struct {
	// Model specifies which model to use (e.g., "llama3-70b-8192")
	Model string

	// Temperature controls randomness (0 = deterministic)
	Temperature float32

	// MaxTokens limits the response length (0 = provider default)
	MaxTokens int
}

// Response represents a complete completion response.
type Response struct {
	// Content is the generated text
	Content string

	// Model is the name of the model that generated the response
	Model string
}

// Common errors returned by providers.
var (
	// ErrProviderUnavailable indicates the completion service is not reachable
	ErrProviderUnavailable = errors.New("completion service is not reachable")

	// ErrMissingAPIKey indicates no credential was configured for the provider
	ErrMissingAPIKey = errors.New("api key not configured")

	// ErrInvalidResponse indicates the provider returned an empty or
	// malformed response
	ErrInvalidResponse = errors.New("provider returned invalid response")
)

// NewProvider creates a completion provider based on the configuration.
// Returns an error if the provider type is unknown or initialization fails.
func NewProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	providerType := strings.ToLower(cfg.LLM.Provider)
	logger.Debug("creating completion provider", "type", providerType)

	switch providerType {
	case "groq":
		return newGroqProvider(cfg, logger)
	case "openai":
		return newOpenAIProvider(cfg, logger)
	case "anthropic":
		return newAnthropicProvider(cfg, logger)
	case "ollama":
		ollamaProvider, err := ollama.New(ollama.Config{
			Host:  cfg.LLM.Ollama.Host,
			Model: cfg.LLM.Ollama.Model,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &ollamaAdapter{provider: ollamaProvider}, nil

	case "":
		return nil, errors.New("llm provider not specified in configuration")

	default:
		return nil, fmt.Errorf("unknown llm provider: %s (supported: groq, openai, anthropic, ollama)", providerType)
	}
}

// ollamaAdapter adapts the ollama.Provider to the llm.Provider interface.
// The subpackage defines its own types to avoid an import cycle.
type ollamaAdapter struct {
	provider *ollama.Provider
}

func (a *ollamaAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	ollamaMessages := make([]ollama.Message, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = ollama.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	var ollamaOpts *ollama.ChatOptions
	if opts != nil {
		ollamaOpts = &ollama.ChatOptions{
			Model:       opts.Model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		}
	}

	resp, err := a.provider.Chat(ctx, ollamaMessages, ollamaOpts)
	if err != nil {
		return nil, err
	}

	return &Response{
		Content: resp.Content,
		Model:   resp.Model,
	}, nil
}

func (a *ollamaAdapter) Heartbeat(ctx context.Context) error {
	return a.provider.Heartbeat(ctx)
}

func (a *ollamaAdapter) ModelAvailable(ctx context.Context, model string) (bool, error) {
	return a.provider.ModelAvailable(ctx, model)
}
