// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles,
// with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8000"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Rate limiting of credential-bearing routes, per client IP
	RateLimitAuthEnabled bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPS     int  `env:"RATE_LIMIT_AUTH_RPS" envDefault:"5"`
	RateLimitAuthBurst   int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"20"`

	// How long a verified username/password pair is remembered in Redis
	CredentialCacheTTL time.Duration `env:"CREDENTIAL_CACHE_TTL" envDefault:"5m"`
	// HMAC key for credential cache keys. When unset a random key is used
	// and cached credentials do not survive a restart.
	CredentialCacheSecret string `env:"CREDENTIAL_CACHE_SECRET"`

	// History page sizes
	MoodHistoryLimit          int `env:"MOOD_HISTORY_LIMIT" envDefault:"10"`
	ActivityHistoryLimit      int `env:"ACTIVITY_HISTORY_LIMIT" envDefault:"20"`
	JournalHistoryLimit       int `env:"JOURNAL_HISTORY_LIMIT" envDefault:"20"`
	ConditionLinkHistoryLimit int `env:"CONDITION_LINK_HISTORY_LIMIT" envDefault:"20"`

	ICD ICDConfig `envPrefix:"ICD_"`
}

// ICDConfig configures the external classification provider (WHO ICD-11 API).
type ICDConfig struct {
	ClientID         string        `env:"CLIENT_ID"`
	ClientSecret     string        `env:"CLIENT_SECRET"`
	TokenURL         string        `env:"TOKEN_URL" envDefault:"https://icdaccessmanagement.who.int/connect/token"`
	BaseURL          string        `env:"BASE_URL" envDefault:"https://id.who.int/icd"`
	Scope            string        `env:"SCOPE" envDefault:"icdapi_access"`
	Release          string        `env:"RELEASE" envDefault:"release/11/2023-01/mms"`
	Language         string        `env:"LANGUAGE" envDefault:"en"`
	CategoryEntityID string        `env:"CATEGORY_ENTITY_ID" envDefault:"334847586"`
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"10s"`
	SafetyMargin     time.Duration `env:"TOKEN_SAFETY_MARGIN" envDefault:"60s"`
	SearchCacheTTL   time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"1h"`
}

// Enabled reports whether provider credentials are configured.
func (c ICDConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads an optional .env file, then parses environment variables.
// Variables already present in the environment win over .env values.
func Load(dotenvFiles ...string) (*Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadICD reads only the classification provider settings, for tools that
// do not need the database or Redis.
func LoadICD(dotenvFiles ...string) (*ICDConfig, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &ICDConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "ICD_"}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	limits := map[string]int{
		"MOOD_HISTORY_LIMIT":           c.MoodHistoryLimit,
		"ACTIVITY_HISTORY_LIMIT":       c.ActivityHistoryLimit,
		"JOURNAL_HISTORY_LIMIT":        c.JournalHistoryLimit,
		"CONDITION_LINK_HISTORY_LIMIT": c.ConditionLinkHistoryLimit,
	}
	for name, v := range limits {
		if v <= 0 {
			return fmt.Errorf("invalid config: %s must be positive, got %d", name, v)
		}
	}
	if c.CredentialCacheSecret != "" && len(c.CredentialCacheSecret) < 32 {
		return fmt.Errorf("invalid config: CREDENTIAL_CACHE_SECRET must be at least 32 bytes")
	}
	if c.ICD.SafetyMargin < 0 {
		return fmt.Errorf("invalid config: ICD_TOKEN_SAFETY_MARGIN must not be negative")
	}
	return nil
}
