package llm

import (
	"fmt"
	"os"
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

// Config selects and configures the provider behind the insight service.
type Config struct {
	Provider string `mapstructure:"provider"`

	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`

	Retry     RetryConfig     `mapstructure:"retry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProviderConfig holds one provider's credentials. BaseURL applies to the
// OpenAI-compatible providers only.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// RetryConfig is exponential backoff with jitter.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// RateLimitConfig caps outgoing requests. A zero PerMinute disables it.
type RateLimitConfig struct {
	PerMinute float64 `mapstructure:"per_minute"`
	Burst     int     `mapstructure:"burst"`
}

func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     ProviderConfig{Model: "gemini-flash"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		RateLimit: RateLimitConfig{PerMinute: 20, Burst: 2},
		Timeout:   30 * time.Second,
	}
}

// keyEnv lists the conventional API key variables in discovery order.
var keyEnv = []struct {
	provider string
	env      string
}{
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// DiscoverConfig returns defaults for the first provider whose conventional
// API key variable is set.
func DiscoverConfig() (Config, bool) {
	for _, k := range keyEnv {
		key := os.Getenv(k.env)
		if key == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = k.provider
		cfg.provider(k.provider).APIKey = key
		return cfg, true
	}
	return Config{}, false
}

// provider returns the settings block for name, or nil.
func (c *Config) provider(name string) *ProviderConfig {
	switch name {
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenRouter:
		return &c.OpenRouter
	default:
		return nil
	}
}

// Validate checks the selected provider has an API key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	p := c.provider(c.Provider)
	if p == nil {
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if p.APIKey == "" {
		return fmt.Errorf("AUTISMART_LLM_%s_API_KEY is required for the %s provider",
			strings.ToUpper(c.Provider), c.Provider)
	}
	if c.RateLimit.PerMinute < 0 {
		return fmt.Errorf("llm.rate_limit.per_minute must not be negative")
	}
	return nil
}

// ModelName returns the configured model of the selected provider.
func (c Config) ModelName() string {
	if p := c.provider(c.Provider); p != nil {
		return p.Model
	}
	return c.Provider
}
