// Package config holds runtime settings for the JobTrackr client.
//
// Sources are applied in order, later ones winning: built-in defaults, a
// JSON config file, environment variables, command-line flags. The result
// is validated before use.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds the settings of the client process.
//
// RequestTimeout bounds every backend call, including the retried attempt
// after a token refresh; the session layer adds no timeouts of its own.
type Config struct {
	APIBaseURL     string        `env:"JOBTRACKR_API_URL" validate:"required,url"`
	DatabasePath   string        `env:"JOBTRACKR_DB_PATH" validate:"required"`
	RequestTimeout time.Duration `env:"JOBTRACKR_REQUEST_TIMEOUT" validate:"min=1s,max=5m"`
	LogLevel       string        `env:"JOBTRACKR_LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// loadDefaults populates c with sensible defaults.
func (c *Config) loadDefaults() {
	c.APIBaseURL = "http://localhost:3000/api"
	c.DatabasePath = "jobtrackr.db"
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
}

// Load constructs a Config from defaults, the JSON file (if any), the
// environment and the given command-line arguments (usually os.Args[1:]).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.loadDefaults()

	if err := applyJSON(cfg, configPath(args)); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := applyFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
