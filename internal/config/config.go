// Package config loads defaults for the command line from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/hanpama/mockgraph/internal/mock"
	"github.com/hanpama/mockgraph/internal/typedtree"
)

// Config holds settings that flags fall back to.
type Config struct {
	LogLevel      string // MOCKGRAPH_LOG_LEVEL, default "info"
	LogFormat     string // MOCKGRAPH_LOG_FORMAT, default "text"
	LogFile       string // MOCKGRAPH_LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // MOCKGRAPH_LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // MOCKGRAPH_LOG_MAX_BACKUPS, default 3
	LogMaxAgeDays int    // MOCKGRAPH_LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // MOCKGRAPH_LOG_COMPRESS, default true

	OtelEndpoint string // MOCKGRAPH_OTEL_ENDPOINT, default "" (disabled)
	OtelService  string // MOCKGRAPH_OTEL_SERVICE, default "mockgraph"

	MaxDepth int // MOCKGRAPH_MAX_DEPTH, default 64
	Workers  int // MOCKGRAPH_WORKERS, default 4
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		LogLevel:      getEnvString("MOCKGRAPH_LOG_LEVEL", "info"),
		LogFormat:     getEnvString("MOCKGRAPH_LOG_FORMAT", "text"),
		LogFile:       getEnvString("MOCKGRAPH_LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("MOCKGRAPH_LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("MOCKGRAPH_LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("MOCKGRAPH_LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("MOCKGRAPH_LOG_COMPRESS", true),

		OtelEndpoint: getEnvString("MOCKGRAPH_OTEL_ENDPOINT", ""),
		OtelService:  getEnvString("MOCKGRAPH_OTEL_SERVICE", "mockgraph"),

		MaxDepth: getEnvInt("MOCKGRAPH_MAX_DEPTH", mock.DefaultMaxDepth),
		Workers:  getEnvInt("MOCKGRAPH_WORKERS", 4),
	}
}

// TreeDepth returns MaxDepth, or the builder default when it is unset.
func (c *Config) TreeDepth() int {
	if c.MaxDepth <= 0 {
		return typedtree.DefaultMaxDepth
	}
	return c.MaxDepth
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
