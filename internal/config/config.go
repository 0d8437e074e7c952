package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"medcore/m/internal/logger"
)

// Config holds application configuration values.
type Config struct {
	// Local cache store
	CacheBackend string
	CacheDSN     string
	CacheDir     string

	// Remote sync
	RemoteURL       string
	RemoteTimeout   time.Duration
	SyncSecret      string
	Offline         bool
	OutboxEnabled   bool
	SyncConcurrency int

	// Record server
	HTTPPort       string
	DatabaseDriver string
	DatabaseDSN    string

	HospitalProfile string

	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	cfg := Config{
		CacheBackend:    strings.ToLower(getEnv("CACHE_BACKEND", "sqlite")),
		CacheDSN:        getEnv("CACHE_DSN", "medcore_cache.db"),
		CacheDir:        getEnv("CACHE_DIR", ".medcore"),
		RemoteURL:       strings.TrimRight(getEnv("REMOTE_URL", ""), "/"),
		RemoteTimeout:   getDuration("REMOTE_TIMEOUT", 5*time.Second),
		SyncSecret:      getEnv("SYNC_SECRET", "dev_secret"),
		Offline:         getBool("OFFLINE", false),
		OutboxEnabled:   getBool("OUTBOX_ENABLED", true),
		SyncConcurrency: getInt("SYNC_CONCURRENCY", 4),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseDriver:  strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseDSN:     getEnv("DATABASE_DSN", "medcore_records.db"),
		HospitalProfile: getEnv("HOSPITAL_PROFILE", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:   getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:       getEnv("LOG_OUTPUT", "stderr"),
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		log.Warn().Str("value", cfg.HTTPPort).Msg("invalid HTTP_PORT, defaulting to 8080")
		cfg.HTTPPort = "8080"
	}
	if cfg.SyncConcurrency < 1 {
		cfg.SyncConcurrency = 1
	}
	return cfg
}

// RemoteEnabled reports whether a remote record endpoint is configured.
func (c Config) RemoteEnabled() bool { return c.RemoteURL != "" }

// GetLoggerConfig returns a logger configuration from the main config
func (c Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean, using default")
		return def
	}
	return b
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return def
	}
	return d
}
