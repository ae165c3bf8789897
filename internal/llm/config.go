package llm

import (
	"fmt"
	"os"
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

// apiKeyEnv is the SKILLPATH_ variable carrying each provider's key.
var apiKeyEnv = map[string]string{
	ProviderAnthropic:  "SKILLPATH_ANTHROPIC_API_KEY",
	ProviderOpenAI:     "SKILLPATH_OPENAI_API_KEY",
	ProviderGemini:     "SKILLPATH_GEMINI_API_KEY",
	ProviderOpenRouter: "SKILLPATH_OPENROUTER_API_KEY",
}

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout bounds a single tutor request including retries.
	Timeout time.Duration `yaml:"timeout"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OpenAIConfig also serves OpenAI-compatible APIs through BaseURL.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns the mock provider so the engine runs offline until
// a real key is configured.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderMock,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ApplyEnv overrides fields from SKILLPATH_* variables. Unset variables
// leave the current value alone.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Provider, "SKILLPATH_LLM_PROVIDER")
	set(&c.Anthropic.APIKey, apiKeyEnv[ProviderAnthropic])
	set(&c.Anthropic.Model, "SKILLPATH_ANTHROPIC_MODEL")
	set(&c.OpenAI.APIKey, apiKeyEnv[ProviderOpenAI])
	set(&c.OpenAI.Model, "SKILLPATH_OPENAI_MODEL")
	set(&c.OpenAI.BaseURL, "SKILLPATH_OPENAI_BASE_URL")
	set(&c.Gemini.APIKey, apiKeyEnv[ProviderGemini])
	set(&c.Gemini.Model, "SKILLPATH_GEMINI_MODEL")
	set(&c.OpenRouter.APIKey, apiKeyEnv[ProviderOpenRouter])
	set(&c.OpenRouter.Model, "SKILLPATH_OPENROUTER_MODEL")
}

// Discover switches to the first provider whose vendor key is present in
// the environment (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY,
// OPENROUTER_API_KEY). It reports whether one was found.
func (c *Config) Discover() bool {
	vendors := []struct {
		env      string
		provider string
		key      *string
	}{
		{"GEMINI_API_KEY", ProviderGemini, &c.Gemini.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &c.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &c.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &c.OpenRouter.APIKey},
	}
	for _, p := range vendors {
		if k := os.Getenv(p.env); k != "" {
			c.Provider = p.provider
			*p.key = k
			return true
		}
	}
	return false
}

// Validate checks that the selected provider has its required API key set.
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
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Provider != ProviderMock && key == "" {
		return missingKey(c.Provider)
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("llm retry max_attempts must not be negative, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
