// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// IdentityURL is the endpoint of the external identity service. When
	// empty, the server trusts gateway-resolved "<role>:<uuid>" credentials
	// instead of calling out per request.
	IdentityURL string

	// KafkaBrokers is the comma-separated broker list for the notification
	// topic. When empty, notifications are discarded.
	KafkaBrokers []string

	// NotifyTopic is the Kafka topic notification events are published to.
	// Defaults to "dispatch.notifications".
	NotifyTopic string

	// RedisAddr is the Redis host:port used for the category cache.
	// When empty, the cache degrades to direct database reads.
	RedisAddr string

	// RedisTTL is how long cached reference data stays fresh. Defaults to 5m.
	RedisTTL time.Duration
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		IdentityURL:  os.Getenv("IDENTITY_URL"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		NotifyTopic:  getEnv("NOTIFY_TOPIC", "dispatch.notifications"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisTTL:     5 * time.Minute,
	}

	if raw := os.Getenv("REDIS_TTL_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("REDIS_TTL_SECONDS must be a positive integer, got %q", raw)
		}
		cfg.RedisTTL = time.Duration(secs) * time.Second
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
