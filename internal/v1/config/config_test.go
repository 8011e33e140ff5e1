package config

import (
	"os"
	"strings"
	"testing"
)

// setupTestEnv sets up environment variables for testing
func setupTestEnv(t *testing.T) func() {
	origVars := map[string]string{
		"JWT_SECRET":       os.Getenv("JWT_SECRET"),
		"ROOM_CODE_LENGTH": os.Getenv("ROOM_CODE_LENGTH"),
		"LOG_LEVEL":        os.Getenv("LOG_LEVEL"),
		"ALLOWED_ORIGINS":  os.Getenv("ALLOWED_ORIGINS"),
	}

	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("ROOM_CODE_LENGTH")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("ALLOWED_ORIGINS")

	return func() {
		for key, val := range origVars {
			if val != "" {
				os.Setenv(key, val)
			} else {
				os.Unsetenv(key)
			}
		}
	}
}

func TestValidateEnv_ValidConfiguration(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("JWT_SECRET", "this-is-a-very-long-secret-key-for-testing-purposes")
	os.Setenv("ROOM_CODE_LENGTH", "6")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.JWTSecret != "this-is-a-very-long-secret-key-for-testing-purposes" {
		t.Errorf("Expected JWT_SECRET to be set correctly")
	}
	if cfg.RoomCodeLength != 6 {
		t.Errorf("Expected ROOM_CODE_LENGTH to be 6, got %d", cfg.RoomCodeLength)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LOG_LEVEL to be 'debug', got '%s'", cfg.LogLevel)
	}
}

func TestValidateEnv_MissingJWTSecret(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("Expected error for missing JWT_SECRET, got nil")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET is required") {
		t.Errorf("Expected error message about JWT_SECRET, got: %v", err)
	}
}

func TestValidateEnv_ShortJWTSecret(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("JWT_SECRET", "short")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("Expected error for short JWT_SECRET, got nil")
	}
	if !strings.Contains(err.Error(), "must be at least 32 characters") {
		t.Errorf("Expected error message about JWT_SECRET length, got: %v", err)
	}
}

func TestValidateEnv_InvalidRoomCodeLength(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("JWT_SECRET", "this-is-a-very-long-secret-key-for-testing-purposes")
	os.Setenv("ROOM_CODE_LENGTH", "10")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("Expected error for out-of-range ROOM_CODE_LENGTH, got nil")
	}
	if !strings.Contains(err.Error(), "ROOM_CODE_LENGTH must be an integer between 1 and 9") {
		t.Errorf("Expected error message about ROOM_CODE_LENGTH, got: %v", err)
	}
}

func TestValidateEnv_OptionalDefaults(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("JWT_SECRET", "this-is-a-very-long-secret-key-for-testing-purposes")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.RoomCodeLength != 4 {
		t.Errorf("Expected ROOM_CODE_LENGTH to default to 4, got %d", cfg.RoomCodeLength)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LOG_LEVEL to default to 'info', got '%s'", cfg.LogLevel)
	}
}

func TestRedactSecret(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		expected string
	}{
		{"Long secret", "this-is-a-very-long-secret-key", "this-is-***"},
		{"Short secret", "short", "***"},
		{"Exactly 8 chars", "12345678", "***"},
		{"9 chars", "123456789", "12345678***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := redactSecret(tt.secret)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}
