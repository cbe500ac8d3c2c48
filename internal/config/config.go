package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/q-pitt/Medilense-3bros/internal/localstate"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

const (
	defaultGeminiModel = "gemini-3-flash-preview"
	defaultOllamaModel = "llava"
)

// placeholderKeyMarker marks the sample registry key shipped in example env files.
const placeholderKeyMarker = "your_kfda"

// Config holds the configuration for the medilens service.
// Environment variables are parsed from the MEDILENS_ prefix.
type Config struct {
	// Build target selects high-level environment: local (single user, sqlite) or server (postgres)
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	HTTPPort       int   `envconfig:"HTTP_PORT" default:"8080"`
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	// Vision extraction
	VisionProvider string `envconfig:"VISION_PROVIDER" default:"gemini"`
	VisionModel    string `envconfig:"VISION_MODEL" default:"gemini-3-flash-preview"`
	GeminiAPIKey   string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiBaseURL  string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	OllamaURL      string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	VisionTimeout  int    `envconfig:"VISION_TIMEOUT_SECONDS" default:"120"`

	// Consecutive vision failures before fast-failing; 0 disables the breaker
	VisionBreakerFailures        int `envconfig:"VISION_BREAKER_FAILURES" default:"5"`
	VisionBreakerCooldownSeconds int `envconfig:"VISION_BREAKER_COOLDOWN_SECONDS" default:"60"`

	// Drug registry (MFDS e-drug easy service)
	KFDAAPIKey           string  `envconfig:"KFDA_API_KEY" default:""`
	KFDABaseURL          string  `envconfig:"KFDA_BASE_URL" default:"http://apis.data.go.kr"`
	LookupTimeoutSeconds int     `envconfig:"LOOKUP_TIMEOUT_SECONDS" default:"15"`
	LookupConcurrency    int     `envconfig:"LOOKUP_CONCURRENCY" default:"4"`
	LookupRatePerSecond  float64 `envconfig:"LOOKUP_RATE_PER_SECOND" default:"10"`

	// Reconciliation defaults
	DefaultCourseDays int    `envconfig:"DEFAULT_COURSE_DAYS" default:"3"`
	DefaultUsage      string `envconfig:"DEFAULT_USAGE" default:"식후 30분"`

	// Calendar "today" is evaluated in this zone
	TimeZone string `envconfig:"TIMEZONE" default:"Asia/Seoul"`

	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver and SQLitePath when left on "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "server":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			p, err := localstate.DBPath()
			if err != nil {
				return fmt.Errorf("resolve sqlite path: %w", err)
			}
			c.SQLitePath = p
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("MEDILENS_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	switch c.VisionProvider {
	case "gemini":
	case "ollama":
		if c.VisionModel == defaultGeminiModel {
			c.VisionModel = defaultOllamaModel
		}
	default:
		return fmt.Errorf("unsupported VISION_PROVIDER: %s", c.VisionProvider)
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.TimeZone, err)
	}
	if c.LookupConcurrency < 1 {
		c.LookupConcurrency = 1
	}
	if c.DefaultCourseDays < 1 {
		return fmt.Errorf("DEFAULT_COURSE_DAYS must be >= 1, got %d", c.DefaultCourseDays)
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with MEDILENS_
// Example: MEDILENS_GEMINI_API_KEY, MEDILENS_HTTP_PORT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MEDILENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("vision_provider", cfg.VisionProvider).
		Str("vision_model", cfg.VisionModel).
		Bool("vision_key_present", cfg.GeminiAPIKey != "").
		Bool("registry_configured", cfg.RegistryConfigured()).
		Str("timezone", cfg.TimeZone).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		BuildTarget:                  "local",
		DBDriver:                     "sqlite",
		SQLitePath:                   ":memory:",
		Environment:                  EnvTesting,
		LogLevel:                     "debug",
		HTTPPort:                     8080,
		MaxUploadBytes:               1 << 20,
		VisionProvider:               "gemini",
		VisionModel:                  "test-vision-model",
		GeminiAPIKey:                 "test-key",
		GeminiBaseURL:                "http://localhost:0",
		OllamaURL:                    "http://localhost:11434",
		VisionTimeout:                5,
		VisionBreakerFailures:        3,
		VisionBreakerCooldownSeconds: 1,
		KFDAAPIKey:                   "test-kfda-key",
		KFDABaseURL:                  "http://localhost:0",
		LookupTimeoutSeconds:         15,
		LookupConcurrency:            2,
		LookupRatePerSecond:          0,
		DefaultCourseDays:            3,
		DefaultUsage:                 "식후 30분",
		TimeZone:                     "UTC",
		HealthIntervalSeconds:        1,
		HealthProbeTimeoutSeconds:    1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// RegistryConfigured reports whether a usable drug-registry key is present.
// The sample placeholder value counts as absent.
func (c *Config) RegistryConfigured() bool {
	return c.KFDAAPIKey != "" && !strings.Contains(c.KFDAAPIKey, placeholderKeyMarker)
}

// Location returns the calendar time zone; falls back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LookupTimeout returns the registry call timeout.
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.LookupTimeoutSeconds) * time.Second
}

// VisionRequestTimeout returns the vision model call timeout.
func (c *Config) VisionRequestTimeout() time.Duration {
	return time.Duration(c.VisionTimeout) * time.Second
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
