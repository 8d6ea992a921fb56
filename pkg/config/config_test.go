package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Save original environment variables
	originalEnvVars := map[string]string{
		"DATABASE_PATH":          os.Getenv("DATABASE_PATH"),
		"SERVER_PORT":            os.Getenv("SERVER_PORT"),
		"SERVER_TIMEOUT_SECONDS": os.Getenv("SERVER_TIMEOUT_SECONDS"),
		"LOG_LEVEL":              os.Getenv("LOG_LEVEL"),
	}

	// Clean up after test
	defer func() {
		for key, value := range originalEnvVars {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	t.Run("loads default configuration", func(t *testing.T) {
		for key := range originalEnvVars {
			os.Unsetenv(key)
		}

		config, err := Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.Database.Path != "./data.db" {
			t.Errorf("expected database path './data.db', got '%s'", config.Database.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.Server.Timeout != 30*time.Second {
			t.Errorf("expected server timeout 30s, got %v", config.Server.Timeout)
		}
		if config.Logging.Level != "info" {
			t.Errorf("expected log level 'info', got '%s'", config.Logging.Level)
		}
	})

	t.Run("loads environment variables", func(t *testing.T) {
		os.Setenv("DATABASE_PATH", "/custom/path.db")
		os.Setenv("SERVER_PORT", "9090")
		os.Setenv("SERVER_TIMEOUT_SECONDS", "45")
		os.Setenv("LOG_LEVEL", "debug")

		config, err := Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path '/custom/path.db', got '%s'", config.Database.Path)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}
		if config.Server.Timeout != 45*time.Second {
			t.Errorf("expected server timeout 45s, got %v", config.Server.Timeout)
		}
		if config.Logging.Level != "debug" {
			t.Errorf("expected log level 'debug', got '%s'", config.Logging.Level)
		}
	})
}

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "returns environment value when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "env_value",
			expected:     "env_value",
		},
		{
			name:         "returns default when environment not set",
			key:          "UNSET_KEY",
			defaultValue: "default",
			envValue:     "",
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := os.Getenv(tt.key)
			defer func() {
				if original == "" {
					os.Unsetenv(tt.key)
				} else {
					os.Setenv(tt.key, original)
				}
			}()

			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			result := getEnvOrDefault(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestGetEnvIntOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		expected     int
	}{
		{
			name:         "returns parsed integer when valid",
			key:          "TEST_INT_KEY",
			defaultValue: 42,
			envValue:     "123",
			expected:     123,
		},
		{
			name:         "returns default when invalid integer",
			key:          "TEST_INT_KEY",
			defaultValue: 42,
			envValue:     "invalid",
			expected:     42,
		},
		{
			name:         "returns default when not set",
			key:          "UNSET_INT_KEY",
			defaultValue: 42,
			envValue:     "",
			expected:     42,
		},
		{
			name:         "accepts negative values",
			key:          "TEST_INT_KEY",
			defaultValue: 42,
			envValue:     "-7",
			expected:     -7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := os.Getenv(tt.key)
			defer func() {
				if original == "" {
					os.Unsetenv(tt.key)
				} else {
					os.Setenv(tt.key, original)
				}
			}()

			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			result := getEnvIntOrDefault(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}
