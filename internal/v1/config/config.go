package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds validated environment configuration.
type Config struct {
	// Required
	JWTSecret string

	// Optional, with defaults
	RoomCodeLength int
	LogLevel       string
	AllowedOrigins string
}

// ValidateEnv validates all required environment variables and returns a
// Config object. Returns an error if any required variable is missing or
// invalid.
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errors []string

	// Required: JWT_SECRET (minimum 32 characters)
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	} else if len(cfg.JWTSecret) < 32 {
		errors = append(errors, fmt.Sprintf("JWT_SECRET must be at least 32 characters (got %d)", len(cfg.JWTSecret)))
	}

	// Optional: ROOM_CODE_LENGTH (defaults to 4, must be 1..=9)
	cfg.RoomCodeLength = 4
	if raw := os.Getenv("ROOM_CODE_LENGTH"); raw != "" {
		length, err := strconv.Atoi(raw)
		if err != nil || length < 1 || length > 9 {
			errors = append(errors, fmt.Sprintf("ROOM_CODE_LENGTH must be an integer between 1 and 9 (got '%s')", raw))
		} else {
			cfg.RoomCodeLength = length
		}
	}

	// Optional: LOG_LEVEL (defaults to "info")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Optional: ALLOWED_ORIGINS (comma-separated; empty means allow all)
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")

	if len(errors) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	logValidatedConfig(cfg)

	return cfg, nil
}

// logValidatedConfig logs the validated configuration with secrets redacted.
func logValidatedConfig(cfg *Config) {
	slog.Info("environment configuration validated",
		"jwt_secret", redactSecret(cfg.JWTSecret),
		"room_code_length", cfg.RoomCodeLength,
		"log_level", cfg.LogLevel,
	)
}

// getEnvOrDefault returns the value of the environment variable or a
// default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// redactSecret redacts a secret by showing only the first 8 characters.
func redactSecret(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:8] + "***"
}
