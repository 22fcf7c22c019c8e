package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full application configuration, parsed from the
// environment.
type Config struct {
	App     AppConfig
	Server  ServerConfig
	Auth    AuthConfig
	Observe ObserveConfig
	Limit   LimitConfig
}

// AppConfig identifies the service.
type AppConfig struct {
	Name    string `env:"APP_NAME" envDefault:"matiq-api"`
	Version string `env:"APP_VERSION" envDefault:"dev"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// AuthConfig configures token verification.
//
// When ProjectURL is set, signing keys are discovered from the
// project's JWKS endpoint. Secret is the shared-secret fallback and is
// required when no project URL is configured.
type AuthConfig struct {
	Secret      string        `env:"SUPABASE_JWT_SECRET"`
	SecretFile  string        `env:"SUPABASE_JWT_SECRET_FILE"`
	Algorithm   string        `env:"JWT_ALGORITHM" envDefault:"HS256"`
	ProjectURL  string        `env:"SUPABASE_URL"`
	JWKSTimeout time.Duration `env:"JWKS_TIMEOUT" envDefault:"10s"`
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	LogLevel        string  `env:"LOG_LEVEL" envDefault:"info"`
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingExporter string  `env:"TRACING_EXPORTER" envDefault:"none"`
	TraceSamplePct  float64 `env:"TRACE_SAMPLE_PCT" envDefault:"1.0"`
	MetricsEnabled  bool    `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsExporter string  `env:"METRICS_EXPORTER" envDefault:"prometheus"`
}

// LimitConfig configures request rate limiting on the API surface.
type LimitConfig struct {
	Rate  int           `env:"RATE_LIMIT" envDefault:"100"`
	Burst int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	Per   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

var dotenvOnce sync.Once

// Load parses the environment into a Config. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	dotenvOnce.Do(func() {
		// Missing .env is fine outside local development.
		_ = godotenv.Load()
	})

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot
// express.
func (c *Config) Validate() error {
	switch c.Auth.Algorithm {
	case "HS256":
		if c.Auth.Secret == "" && c.Auth.SecretFile == "" && c.Auth.ProjectURL == "" {
			return ErrMissingSecret
		}
	case "RS256":
		if c.Auth.ProjectURL == "" {
			return ErrMissingDiscoveryURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAlgorithm, c.Auth.Algorithm)
	}
	return nil
}
