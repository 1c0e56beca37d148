// Package config loads proxy configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/poegate/poegate"
)

// Defaults for optional settings.
const (
	DefaultMaxFileSizeMB        = 10
	DefaultSessionExpiryMinutes = 60
	DefaultTimeoutSeconds       = 60
	DefaultListenAddr           = ":8000"
)

// Config holds every recognized option. PoeAPIKey is the only required one;
// its absence is a fatal startup error.
type Config struct {
	PoeAPIKey            string
	Debug                bool
	ClaudeCompatible     bool
	MaxFileSizeMB        int
	SessionExpiryMinutes int
	TimeoutSeconds       int
	ListenAddr           string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiKey := os.Getenv("POE_API_KEY")
	if apiKey == "" {
		return nil, &poegate.AuthenticationError{
			Message: "POE_API_KEY environment variable not set. Get your API key from https://poe.com/api_key",
		}
	}

	cfg := &Config{
		PoeAPIKey:            apiKey,
		Debug:                envBool("DEBUG_MODE", false),
		ClaudeCompatible:     envBool("CLAUDE_COMPATIBLE", true),
		MaxFileSizeMB:        envInt("MAX_FILE_SIZE_MB", DefaultMaxFileSizeMB),
		SessionExpiryMinutes: envInt("SESSION_EXPIRY_MINUTES", DefaultSessionExpiryMinutes),
		TimeoutSeconds:       envInt("POE_TIMEOUT_SECONDS", DefaultTimeoutSeconds),
		ListenAddr:           envString("LISTEN_ADDR", DefaultListenAddr),
	}
	return cfg, nil
}

// SessionExpiry returns the session expiry window as a duration.
func (c *Config) SessionExpiry() time.Duration {
	return time.Duration(c.SessionExpiryMinutes) * time.Minute
}

// Timeout returns the upstream call ceiling as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func envString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		slog.Warn("invalid boolean value, using default", "key", key, "value", val, "default", fallback)
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("invalid integer value, using default", "key", key, "value", val, "default", fallback)
		return fallback
	}
	return parsed
}
