package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("LEDGER_TIMEZONE", "")

	cfg := Load()

	assert.Equal(t, "8082", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Empty(t, cfg.RabbitURL)
	assert.Equal(t, "UTC", cfg.LedgerTimezone)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "windbnb")
	t.Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("LEDGER_TIMEZONE", "America/New_York")

	cfg := Load()

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitURL)
	assert.Contains(t, cfg.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DSN(), "dbname=windbnb")

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestValidate_Errors(t *testing.T) {
	cfg := &Config{
		ServerPort:     "70000",
		DBDriver:       "mysql",
		JWTSecret:      "",
		LedgerTimezone: "Mars/Olympus",
	}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "LEDGER_TIMEZONE")
}
