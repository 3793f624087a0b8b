package config

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEDGER_STORE", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 5*time.Second, cfg.GuardTimeout)
	assert.True(t, decimal.NewFromInt(2000).Equal(cfg.MinOpeningBalance))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LEDGER_GUARD_TIMEOUT", "250ms")
	t.Setenv("LEDGER_MIN_OPENING_BALANCE", "150.50")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 250*time.Millisecond, cfg.GuardTimeout)
	assert.True(t, decimal.RequireFromString("150.50").Equal(cfg.MinOpeningBalance))
	assert.Equal(t, "host=db port=5432 user=postgres password=secret dbname=ledger sslmode=disable", cfg.GetDBConnectionString())
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("LEDGER_STORE", "mysql")

	_, err := Load()
	assert.ErrorContains(t, err, "LEDGER_STORE")
}

func TestNewLoggerLevel(t *testing.T) {
	cfg := &Config{LogLevel: "warn", LogFormat: "text"}
	logger := cfg.NewLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}
