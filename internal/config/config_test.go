package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var configVars = []string{
	"LOG_LEVEL", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_POOL_MIN_CONNS", "DB_POOL_MAX_CONNS", "DB_ACQUIRE_TIMEOUT_MS",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, v := range configVars {
		if err := os.Unsetenv(v); err != nil {
			t.Logf("Failed to unset %s: %v", v, err)
		}
	}
}

// stashDotEnv moves an existing .env out of the way so defaults are really defaults.
func stashDotEnv(t *testing.T) {
	t.Helper()
	cwd, _ := os.Getwd()
	envPath := filepath.Join(cwd, ".env")
	tempPath := filepath.Join(cwd, ".env.bak")

	if _, err := os.Stat(envPath); err == nil {
		if err := os.Rename(envPath, tempPath); err != nil {
			t.Fatalf("Failed to rename .env file: %v", err)
		}
		t.Cleanup(func() {
			if err := os.Rename(tempPath, envPath); err != nil {
				t.Logf("Failed to restore .env file: %v", err)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "test_value")

	value := getEnv("TEST_ENV_VAR", "default_value")
	assert.Equal(t, "test_value", value)

	value = getEnv("NON_EXISTING_VAR", "default_value")
	assert.Equal(t, "default_value", value)
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	stashDotEnv(t)

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "mcp_database", cfg.DB.Name)
	assert.Equal(t, "postgres", cfg.DB.User)
	assert.Equal(t, "postgres", cfg.DB.Password)
	assert.Equal(t, 1, cfg.DB.MinConns)
	assert.Equal(t, 10, cfg.DB.MaxConns)
	assert.Equal(t, time.Duration(0), cfg.DB.AcquireTimeout)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	stashDotEnv(t)

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_POOL_MIN_CONNS", "2")
	t.Setenv("DB_POOL_MAX_CONNS", "20")
	t.Setenv("DB_ACQUIRE_TIMEOUT_MS", "1500")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "db.example.com", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, "testdb", cfg.DB.Name)
	assert.Equal(t, "testuser", cfg.DB.User)
	assert.Equal(t, "testpass", cfg.DB.Password)
	assert.Equal(t, 2, cfg.DB.MinConns)
	assert.Equal(t, 20, cfg.DB.MaxConns)
	assert.Equal(t, 1500*time.Millisecond, cfg.DB.AcquireTimeout)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "DB_PORT", "not-a-port"},
		{"port out of range", "DB_PORT", "70000"},
		{"zero min conns", "DB_POOL_MIN_CONNS", "0"},
		{"max below min", "DB_POOL_MAX_CONNS", "0"},
		{"negative acquire timeout", "DB_ACQUIRE_TIMEOUT_MS", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			stashDotEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := LoadConfig()
			assert.Nil(t, cfg)

			var confErr *ConfigurationError
			assert.ErrorAs(t, err, &confErr)
			assert.Equal(t, tt.key, confErr.Field)
		})
	}
}
