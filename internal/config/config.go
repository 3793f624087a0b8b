package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds the service settings, read from the environment and an
// optional .env file.
type Config struct {
	ServerPort        string          `env:"SERVER_PORT" envDefault:"8080"`
	Store             string          `env:"LEDGER_STORE" envDefault:"postgres"`
	DBHost            string          `env:"DB_HOST" envDefault:"localhost"`
	DBPort            string          `env:"DB_PORT" envDefault:"5432"`
	DBUser            string          `env:"DB_USER" envDefault:"postgres"`
	DBPassword        string          `env:"DB_PASSWORD"`
	DBName            string          `env:"DB_NAME" envDefault:"ledger"`
	DBSSLMode         string          `env:"DB_SSLMODE" envDefault:"disable"`
	GuardTimeout      time.Duration   `env:"LEDGER_GUARD_TIMEOUT" envDefault:"5s"`
	MinOpeningBalance decimal.Decimal `env:"LEDGER_MIN_OPENING_BALANCE" envDefault:"2000"`
	LogLevel          string          `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat         string          `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("LEDGER_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.GuardTimeout < 0 {
		return fmt.Errorf("LEDGER_GUARD_TIMEOUT must not be negative")
	}
	if c.MinOpeningBalance.IsNegative() {
		return fmt.Errorf("LEDGER_MIN_OPENING_BALANCE must not be negative")
	}
	return nil
}

// GetDBConnectionString returns a lib/pq key/value connection string.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
