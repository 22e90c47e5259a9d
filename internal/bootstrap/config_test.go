package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "APP_ENV", "LOG_LEVEL", "REDIS_ADDR", "REDIS_KEY_PREFIX", "RATE_LIMIT_MAX",
		"RATE_LIMIT_WINDOW", "CORS_ALLOWED_ORIGINS", "JDOODLE_CLIENT_ID", "JDOODLE_CLIENT_SECRET",
		"JDOODLE_ENDPOINT", "EXEC_TIMEOUT", "WS_MAX_MESSAGE_BYTES", "WS_EVENTS_PER_SECOND",
		"WS_EVENT_BURST", "ACTIVITY_HISTORY_LIMIT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "cc:", cfg.KeyPrefix)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 20, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "https://api.jdoodle.com/v1/execute", cfg.JDoodleEndpoint)
	assert.Equal(t, 15*time.Second, cfg.ExecTimeout)
	assert.Equal(t, int64(1048576), cfg.WSMaxMessageBytes)
	assert.Equal(t, 50.0, cfg.WSEventsPerSecond)
	assert.Equal(t, 100, cfg.WSEventBurst)
	assert.Equal(t, 50, cfg.ActivityHistoryLimit)
	assert.False(t, cfg.ExecutionConfigured())
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("RATE_LIMIT_MAX", "abc")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("JDOODLE_CLIENT_ID", "id")
	t.Setenv("JDOODLE_CLIENT_SECRET", "secret")
	t.Setenv("WS_EVENTS_PER_SECOND", "2.5")
	t.Setenv("ACTIVITY_HISTORY_LIMIT", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 20, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.ExecutionConfigured())
	assert.Equal(t, 2.5, cfg.WSEventsPerSecond)
	assert.Equal(t, 10, cfg.ActivityHistoryLimit)
}
