// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Password PasswordConfig
	Breach   BreachConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `env:"PORT" envDefault:"8080"`
	ReadTimeout  int    `env:"SERVER_READ_TIMEOUT" envDefault:"15"`  // seconds
	WriteTimeout int    `env:"SERVER_WRITE_TIMEOUT" envDefault:"15"` // seconds
	IdleTimeout  int    `env:"SERVER_IDLE_TIMEOUT" envDefault:"60"`  // seconds
}

// DatabaseConfig holds connection settings for PostgreSQL or SQLite.
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       int    `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"users"`
	Password   string `env:"DB_PASSWORD" envDefault:"users123"`
	DBName     string `env:"DB_NAME" envDefault:"users"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"DB_SQLITE_PATH" envDefault:"users.db"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev            bool   `env:"DEV" envDefault:"false"`
	Migrations     bool   `env:"MIGRATIONS" envDefault:"false"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	AuthzEngine    string `env:"AUTHZ_ENGINE" envDefault:"table"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	TokenSecret string        `env:"TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	// ActorCacheTTL caches resolved actors; zero disables the cache.
	ActorCacheTTL time.Duration `env:"ACTOR_CACHE_TTL" envDefault:"0s"`
}

// PasswordConfig holds the strength requirements for new passwords.
type PasswordConfig struct {
	MinLength   int  `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	MixedCase   bool `env:"PASSWORD_MIXED_CASE" envDefault:"true"`
	Numbers     bool `env:"PASSWORD_NUMBERS" envDefault:"true"`
	Symbols     bool `env:"PASSWORD_SYMBOLS" envDefault:"true"`
	BreachCheck bool `env:"PASSWORD_BREACH_CHECK" envDefault:"false"`
}

// BreachConfig holds the Pwned Passwords range API settings.
type BreachConfig struct {
	URL     string        `env:"HIBP_URL" envDefault:"https://api.pwnedpasswords.com/range/"`
	Timeout time.Duration `env:"HIBP_TIMEOUT" envDefault:"5s"`
}

const devTokenSecret = "dev-token-secret"

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Level maps LOG_LEVEL to a slog level. Unknown values map to info.
func (a AppConfig) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(a.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Load reads a .env file when present, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from environment variables and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Auth.TokenSecret == "" && cfg.App.Dev {
		cfg.Auth.TokenSecret = devTokenSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports inconsistent settings.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", c.Database.Driver))
	}
	switch c.App.AuthzEngine {
	case "table", "casbin":
	default:
		errs = append(errs, fmt.Errorf("AUTHZ_ENGINE: unsupported engine %q", c.App.AuthzEngine))
	}
	if c.Auth.TokenSecret == "" {
		errs = append(errs, errors.New("TOKEN_SECRET: required outside DEV mode"))
	}
	if c.Auth.ActorCacheTTL < 0 {
		errs = append(errs, errors.New("ACTOR_CACHE_TTL: must not be negative"))
	}
	if c.Password.MinLength < 1 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH: must be positive"))
	}
	return errors.Join(errs...)
}
