package config

import (
	"fmt"
	"net/url"
	"time"

	"go-simpler.org/env"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" default:"dev"`
	Port     string `env:"PORT" default:"5000"`
	LogLevel string `env:"LOG_LEVEL" default:"info"`

	StripMarkdown bool `env:"SENTIMENT_STRIP_MARKDOWN" default:"true"`

	// ScorerURL switches scoring from the in-process VADER lexicon to a
	// remote scoring service when set.
	ScorerURL     string        `env:"SCORER_URL"`
	ScorerTimeout time.Duration `env:"SCORER_TIMEOUT" default:"10s"`

	KafkaBroker string `env:"KAFKA_BROKER"`
	KafkaTopic  string `env:"KAFKA_TOPIC" default:"sentiment-results"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads the typed configuration from the process environment. Call
// LoadEnv first to pull in the .env file for the current APP_ENV.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) RemoteScoring() bool {
	return c.ScorerURL != ""
}

func (c *Config) PublishingEnabled() bool {
	return c.KafkaBroker != ""
}

func validate(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if cfg.ScorerURL != "" {
		u, err := url.Parse(cfg.ScorerURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("SCORER_URL must be an absolute URL, got %q", cfg.ScorerURL)
		}
	}

	if cfg.ScorerTimeout <= 0 {
		return fmt.Errorf("SCORER_TIMEOUT must be positive, got %s", cfg.ScorerTimeout)
	}

	if cfg.KafkaBroker != "" && cfg.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKER is set")
	}

	return nil
}
