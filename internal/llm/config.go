package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

type Config struct {
	Provider   string           `toml:"provider"`
	Anthropic  AnthropicConfig  `toml:"anthropic"`
	OpenAI     OpenAIConfig     `toml:"openai"`
	Gemini     GeminiConfig     `toml:"gemini"`
	OpenRouter OpenRouterConfig `toml:"openrouter"`
	Retry      RetryConfig      `toml:"retry"`

	// Timeout bounds one tutor question including retries.
	Timeout time.Duration `toml:"timeout"`
}

type AnthropicConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

type RetryConfig struct {
	MaxAttempts int           `toml:"max_attempts"`
	InitialWait time.Duration `toml:"initial_wait"`
	MaxWait     time.Duration `toml:"max_wait"`
	Multiplier  float64       `toml:"multiplier"`
}

// DefaultConfig selects the offline mock so a fresh install works without
// keys.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderMock,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// Discover fills in the first vendor key found under its conventional
// variable name (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY,
// OPENROUTER_API_KEY). It reports false when none is set.
func (c *Config) Discover(getenv func(string) string) bool {
	switch {
	case getenv("GEMINI_API_KEY") != "":
		c.Provider, c.Gemini.APIKey = ProviderGemini, getenv("GEMINI_API_KEY")
	case getenv("OPENAI_API_KEY") != "":
		c.Provider, c.OpenAI.APIKey = ProviderOpenAI, getenv("OPENAI_API_KEY")
	case getenv("ANTHROPIC_API_KEY") != "":
		c.Provider, c.Anthropic.APIKey = ProviderAnthropic, getenv("ANTHROPIC_API_KEY")
	case getenv("OPENROUTER_API_KEY") != "":
		c.Provider, c.OpenRouter.APIKey = ProviderOpenRouter, getenv("OPENROUTER_API_KEY")
	default:
		return false
	}
	return true
}

func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case ProviderAnthropic:
		key = c.Anthropic.APIKey
	case ProviderOpenAI:
		key = c.OpenAI.APIKey
	case ProviderGemini:
		key = c.Gemini.APIKey
	case ProviderOpenRouter:
		key = c.OpenRouter.APIKey
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("llm: unknown provider %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("llm: %s provider needs an api key (STUDYPULSE_LLM_%s_API_KEY)", c.Provider, strings.ToUpper(c.Provider))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("llm: timeout must be positive")
	}
	return nil
}
