package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// HTTP adapter
	HTTP HTTPConfig

	// Session lifecycle side effects
	Lifecycle LifecycleConfig

	// Curriculum catalog
	Curriculum CurriculumConfig

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string      `env:"APP_NAME" envDefault:"internship-hub"`
	Environment Environment `env:"APP_ENV" envDefault:"development"`

	// Business timezone of schedule records (default: Asia/Almaty)
	Timezone string `env:"APP_TIMEZONE" envDefault:"Asia/Almaty"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig holds PostgreSQL settings. An empty URL outside production
// selects the in-memory store.
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	Migrate  bool   `env:"DB_MIGRATE" envDefault:"true"`
}

// RedisConfig holds Redis settings.
type RedisConfig struct {
	URL      string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Disabled bool   `env:"REDIS_DISABLED" envDefault:"false"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host         string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LifecycleConfig holds settings of session side effects.
type LifecycleConfig struct {
	OutboxDestination   string `env:"OUTBOX_DESTINATION" envDefault:"hr_system"`
	ScheduleSyncEnabled bool   `env:"SCHEDULE_SYNC_ENABLED" envDefault:"true"`
}

// CurriculumConfig holds catalog settings.
type CurriculumConfig struct {
	CacheTTL   time.Duration `env:"CURRICULUM_CACHE_TTL" envDefault:"10m"`
	ImportFile string        `env:"CURRICULUM_IMPORT_FILE"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom parses configuration from the given variables only.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Observability.LogLevel = strings.ToLower(cfg.Observability.LogLevel)
	cfg.Observability.LogFormat = strings.ToLower(cfg.Observability.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Sprintf("APP_ENV %q is not one of development, staging, production", c.App.Environment))
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("APP_TIMEZONE %q is not a known timezone", c.App.Timezone))
	}

	// Database URL is required in production
	if c.App.Environment == EnvProduction && c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required in production")
	}

	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}

	if !c.Redis.Disabled && c.Redis.URL == "" {
		errs = append(errs, "REDIS_URL is required unless REDIS_DISABLED is set")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, "HTTP_PORT must be 1-65535")
	}

	if c.Lifecycle.OutboxDestination == "" {
		errs = append(errs, "OUTBOX_DESTINATION cannot be empty")
	}

	if c.Curriculum.CacheTTL < 0 {
		errs = append(errs, "CURRICULUM_CACHE_TTL cannot be negative")
	}

	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "LOG_LEVEL must be one of debug, info, warn, error")
	}

	switch c.Observability.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, "LOG_FORMAT must be json or text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// UseMemoryStore reports whether the in-memory store replaces PostgreSQL.
func (c *Config) UseMemoryStore() bool {
	return c.Database.URL == "" && c.App.Environment != EnvProduction
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}
