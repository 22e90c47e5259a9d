package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/gunagantinikhil/code-cast1/internal/domain"
	"github.com/gunagantinikhil/code-cast1/internal/execution"
)

// Config holds settings read from the environment or a .env file.
type Config struct {
	ServerPort string
	AppEnv     string // development/production
	LogLevel   string

	RedisAddr     string // empty disables rate limiting
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	RateLimitMax    int
	RateLimitWindow time.Duration

	CORSAllowedOrigins []string

	JDoodleClientID     string
	JDoodleClientSecret string
	JDoodleEndpoint     string
	ExecTimeout         time.Duration

	WSMaxMessageBytes    int64
	WSEventsPerSecond    float64
	WSEventBurst         int
	ActivityHistoryLimit int
}

// ExecutionConfigured reports whether runner credentials are present.
func (c *Config) ExecutionConfigured() bool {
	return c.JDoodleClientID != "" && c.JDoodleClientSecret != ""
}

// LoadConfig reads configuration from the environment after loading .env when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:          os.Getenv("SERVER_PORT"),
		AppEnv:              os.Getenv("APP_ENV"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:           os.Getenv("REDIS_KEY_PREFIX"),
		JDoodleClientID:     os.Getenv("JDOODLE_CLIENT_ID"),
		JDoodleClientSecret: os.Getenv("JDOODLE_CLIENT_SECRET"),
		JDoodleEndpoint:     os.Getenv("JDOODLE_ENDPOINT"),
		CORSAllowedOrigins:  splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		RedisDB:              envInt("REDIS_DB", 0),
		RateLimitMax:         envInt("RATE_LIMIT_MAX", 20),
		RateLimitWindow:      envDuration("RATE_LIMIT_WINDOW", time.Minute),
		ExecTimeout:          envDuration("EXEC_TIMEOUT", 15*time.Second),
		WSMaxMessageBytes:    int64(envInt("WS_MAX_MESSAGE_BYTES", 1<<20)),
		WSEventsPerSecond:    envFloat("WS_EVENTS_PER_SECOND", 50),
		WSEventBurst:         envInt("WS_EVENT_BURST", 100),
		ActivityHistoryLimit: envInt("ACTIVITY_HISTORY_LIMIT", domain.DefaultActivityHistory),
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "5000"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "cc:"
	}
	if cfg.JDoodleEndpoint == "" {
		cfg.JDoodleEndpoint = execution.DefaultEndpoint
	}
	if cfg.RateLimitMax <= 0 {
		logrus.Warnf("Invalid RATE_LIMIT_MAX %d, using 20", cfg.RateLimitMax)
		cfg.RateLimitMax = 20
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logrus.Warnf("Invalid %s '%s', using default %d", key, raw, def)
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logrus.Warnf("Invalid %s '%s', using default %g", key, raw, def)
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		logrus.Warnf("Invalid %s '%s', using default %s", key, raw, def)
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
