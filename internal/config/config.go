// Package config loads application settings from defaults, an optional
// YAML file, AUTISMART_* environment variables and bound CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/autismart/autismart/internal/llm"
	"github.com/autismart/autismart/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. AUTISMART_LOG_LEVEL.
const EnvPrefix = "AUTISMART"

// Config is the full application configuration.
type Config struct {
	DB      string         `mapstructure:"db"`
	Log     logging.Config `mapstructure:"log"`
	Catalog CatalogConfig  `mapstructure:"catalog"`
	LLM     llm.Config     `mapstructure:"llm"`
	AMQP    AMQPConfig     `mapstructure:"amqp"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Update  UpdateConfig   `mapstructure:"update"`
}

// CatalogConfig points at question packs on disk. An empty Dir uses the
// embedded catalog.
type CatalogConfig struct {
	Dir     string `mapstructure:"dir"`
	Pattern string `mapstructure:"pattern"`
}

// AMQPConfig enables publishing activities to a broker when URL is set.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// MetricsConfig enables the textfile metrics dump when File is set.
type MetricsConfig struct {
	File string `mapstructure:"file"`
}

// RedisConfig enables the shared insight cache when URL is set.
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

// UpdateConfig selects the GitHub repository releases are checked against.
type UpdateConfig struct {
	Repo string `mapstructure:"repo"`
}

// SetDefaults registers every key with its default value. Keys must be
// known to viper for AutomaticEnv to resolve them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	l := llm.DefaultConfig()

	v.SetDefault("db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("catalog.dir", "")
	v.SetDefault("catalog.pattern", "**/*.yaml")
	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)
	v.SetDefault("llm.rate_limit.per_minute", l.RateLimit.PerMinute)
	v.SetDefault("llm.rate_limit.burst", l.RateLimit.Burst)
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "autismart.activities")
	v.SetDefault("metrics.file", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("update.repo", "autismart/autismart")
}

// Load reads configuration into v. When file is empty, autismart.yaml is
// searched in $XDG_CONFIG_HOME/autismart and the working directory; a
// missing file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("autismart")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later and far from
// their source. LLM credentials are checked only when insights are used.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}
	if c.Catalog.Pattern != "" && !doublestar.ValidatePattern(c.Catalog.Pattern) {
		return fmt.Errorf("catalog.pattern: invalid glob %q", c.Catalog.Pattern)
	}
	if c.LLM.RateLimit.PerMinute < 0 {
		return fmt.Errorf("llm.rate_limit.per_minute must not be negative")
	}
	if c.LLM.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm.retry.max_attempts must be at least 1")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	return nil
}

// configDir returns $XDG_CONFIG_HOME/autismart, falling back to
// ~/.config/autismart.
func configDir() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "autismart")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "autismart")
}
