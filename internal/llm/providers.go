package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/salescope-dev/salescope/internal/config"
)

// defaultGroqBaseURL is Groq's OpenAI-compatible endpoint.
const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// newGroqProvider creates a Groq provider. Groq speaks the OpenAI wire
// protocol, so it rides on langchaingo's openai client with a base URL.
func newGroqProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	apiKey := config.ResolveAPIKey(cfg.LLM.Groq.APIKey, "GROQ_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf(
			"%w: set GROQ_API_KEY environment variable or llm.groq.api_key in config",
			ErrMissingAPIKey,
		)
	}

	baseURL := cfg.LLM.Groq.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}

	model, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(cfg.LLM.Groq.Model),
		openai.WithBaseURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create groq provider: %w", err)
	}

	logger.Info("initialized groq provider",
		"model", cfg.LLM.Groq.Model,
		"base_url", baseURL,
	)

	return &langchainProvider{
		model:        model,
		defaultModel: cfg.LLM.Groq.Model,
		providerType: "groq",
		logger:       logger,
	}, nil
}

// newOpenAIProvider creates an OpenAI provider.
func newOpenAIProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	apiKey := config.ResolveAPIKey(cfg.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf(
			"%w: set OPENAI_API_KEY environment variable or llm.openai.api_key in config",
			ErrMissingAPIKey,
		)
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(cfg.LLM.OpenAI.Model),
	}
	if cfg.LLM.OpenAI.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.LLM.OpenAI.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai provider: %w", err)
	}

	logger.Info("initialized openai provider", "model", cfg.LLM.OpenAI.Model)

	return &langchainProvider{
		model:        model,
		defaultModel: cfg.LLM.OpenAI.Model,
		providerType: "openai",
		logger:       logger,
	}, nil
}

// newAnthropicProvider creates an Anthropic/Claude provider.
func newAnthropicProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	apiKey := config.ResolveAPIKey(cfg.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf(
			"%w: set ANTHROPIC_API_KEY environment variable or llm.anthropic.api_key in config",
			ErrMissingAPIKey,
		)
	}

	model, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(cfg.LLM.Anthropic.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic provider: %w", err)
	}

	logger.Info("initialized anthropic provider", "model", cfg.LLM.Anthropic.Model)

	return &langchainProvider{
		model:        model,
		defaultModel: cfg.LLM.Anthropic.Model,
		providerType: "anthropic",
		logger:       logger,
	}, nil
}

// langchainProvider implements the Provider interface over langchaingo's
// llms.Model, which covers all cloud providers.
type langchainProvider struct {
	model        llms.Model
	defaultModel string
	providerType string
	logger       *slog.Logger
}

// Chat sends messages and returns a complete response.
func (p *langchainProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	lcMessages := make([]llms.MessageContent, len(messages))
	for i, msg := range messages {
		lcMessages[i] = llms.TextParts(convertRole(msg.Role), msg.Content)
	}

	callOpts := []llms.CallOption{llms.WithModel(p.defaultModel)}
	if opts != nil {
		if opts.Model != "" {
			callOpts = []llms.CallOption{llms.WithModel(opts.Model)}
		}
		callOpts = append(callOpts, llms.WithTemperature(float64(opts.Temperature)))
		if opts.MaxTokens > 0 {
			callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
		}
	}

	p.logger.Debug("sending chat request",
		"provider", p.providerType,
		"messages", len(messages),
	)

	resp, err := p.model.GenerateContent(ctx, lcMessages, callOpts...)
	if err != nil {
		p.logger.Error("chat request failed", "provider", p.providerType, "error", err)
		return nil, fmt.Errorf("%s chat request: %w", p.providerType, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return nil, ErrInvalidResponse
	}

	return &Response{
		Content: resp.Choices[0].Content,
		Model:   p.defaultModel,
	}, nil
}

// Heartbeat pings the provider with a minimal-token request.
func (p *langchainProvider) Heartbeat(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.Chat(ctx, []Message{
		{Role: "user", Content: "ping"},
	}, &ChatOptions{MaxTokens: 1})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return nil
}

func convertRole(role string) llms.ChatMessageType {
	switch role {
	case "system":
		return llms.ChatMessageTypeSystem
	case "user":
		return llms.ChatMessageTypeHuman
	case "assistant":
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeGeneric
	}
}
