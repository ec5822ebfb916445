package config

import (
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSettings(t *testing.T) *Config {
	t.Helper()
	var settings Settings
	require.NoError(t, env.Parse(&settings))
	return &Config{Settings: settings}
}

func TestSettings_Defaults(t *testing.T) {
	cfg := parseSettings(t)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10*time.Second, cfg.MongoReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.MongoWriteTimeout)
	assert.Equal(t, 3, cfg.RepeatClientThreshold)
	assert.Equal(t, EventBrokerNone, cfg.EventBroker)
}

func TestSettings_MongoTimeoutsIndependentOfServer(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "2s")
	t.Setenv("MONGO_READ_TIMEOUT", "4s")
	t.Setenv("MONGO_WRITE_TIMEOUT", "6s")

	cfg := parseSettings(t)

	assert.Equal(t, time.Second, cfg.ReadTimeout)
	assert.Equal(t, 2*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 4*time.Second, cfg.MongoReadTimeout)
	assert.Equal(t, 6*time.Second, cfg.MongoWriteTimeout)
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := parseSettings(t)
	cfg.MongoReadTimeout = 0
	cfg.MongoWriteTimeout = -time.Second
	cfg.Port = "0"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "MongoReadTimeout must be positive")
	assert.Contains(t, msg, "MongoWriteTimeout must be positive")
	assert.Contains(t, msg, "Port must be between 1 and 65535")
	assert.True(t, strings.Contains(msg, "  1. ") && strings.Contains(msg, "  3. "))
}
