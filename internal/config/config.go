// Package config provides configuration types and helpers for salescope.
package config

import "os"

// Config holds the application-wide configuration.
type Config struct {
	Format   string         `mapstructure:"format"`
	Verbose  bool           `mapstructure:"verbose"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	QueryLog QueryLogConfig `mapstructure:"query_log"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// DatasetConfig holds the sales dataset source settings.
type DatasetConfig struct {
	// Path to the sales CSV file
	Path string `mapstructure:"path"`
}

// QueryLogConfig holds query log storage settings.
type QueryLogConfig struct {
	// Path to the append-only query log CSV
	Path string `mapstructure:"path"`
}

// LLMConfig holds configuration for the fallback completion providers.
type LLMConfig struct {
	// Provider selects which LLM to use: "groq", "openai", "anthropic", "ollama"
	Provider string `mapstructure:"provider"`

	// Global settings applied to all providers
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	// Provider-specific configuration
	Groq      GroqConfig      `mapstructure:"groq"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
}

// GroqConfig holds Groq-specific settings. Groq exposes an OpenAI-compatible
// API, so only the key, model, and endpoint are needed.
type GroqConfig struct {
	APIKey  string `mapstructure:"api_key"`  // Optional: read from GROQ_API_KEY if empty
	Model   string `mapstructure:"model"`    // e.g., "llama3-70b-8192"
	BaseURL string `mapstructure:"base_url"` // Defaults to https://api.groq.com/openai/v1
}

// OpenAIConfig holds OpenAI-specific settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`  // Optional: read from OPENAI_API_KEY if empty
	Model   string `mapstructure:"model"`    // e.g., "gpt-4o"
	BaseURL string `mapstructure:"base_url"` // Optional: for compatible endpoints
}

// AnthropicConfig holds Anthropic/Claude-specific settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"` // Optional: read from ANTHROPIC_API_KEY if empty
	Model  string `mapstructure:"model"`   // e.g., "claude-3-7-sonnet-20250219"
}

// OllamaConfig holds Ollama-specific settings for a local fallback model.
type OllamaConfig struct {
	Host  string `mapstructure:"host"`  // API endpoint
	Model string `mapstructure:"model"` // Default model name
}

// ResolveAPIKey checks the configured key first, then falls back to the
// named environment variable. Returns empty string if neither is set.
func ResolveAPIKey(configKey, envVarName string) string {
	if configKey != "" {
		return configKey
	}
	return os.Getenv(envVarName)
}
