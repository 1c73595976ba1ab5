package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer      string        // Issuer claim for session tokens (default: nyaybooker)
	TokenSecret string        // Required: HS256 signing secret, min 32 bytes
	TokenTTL    time.Duration // Session token lifetime (default: 24h)

	DatabaseFile   string   // Path to SQLite database file (default: ./nyaybooker.db)
	RedisAddr      string   // Optional: Redis address for shared rate-limit counters
	AllowedOrigins []string // CORS allowlist, comma separated; "*" allows any (default: *)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	DispatchInterval     time.Duration // Notification dispatch poll interval (default: 15s)
	DispatchPerSec       float64       // Outbound notification rate cap (default: 10)
}

var ErrMissingSecret = errors.New("TOKEN_SECRET is required (min 32 bytes)")

func LoadConfig() (Config, error) {
	cfg := Config{
		Issuer:         getEnvOrDefault("TOKEN_ISSUER", "nyaybooker"),
		TokenSecret:    os.Getenv("TOKEN_SECRET"),
		TokenTTL:       getEnvDurationOrDefault("TOKEN_TTL", 24*time.Hour),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "nyaybooker.db"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		AllowedOrigins: splitAndTrim(getEnvOrDefault("ALLOWED_ORIGINS", "*")),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		DispatchInterval:     getEnvDurationOrDefault("DISPATCH_INTERVAL", 15*time.Second),
		DispatchPerSec:       getEnvFloatOrDefault("DISPATCH_PER_SEC", 10),
	}

	if cfg.TokenSecret == "" {
		return Config{}, ErrMissingSecret
	}

	return cfg, nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
		return f
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
