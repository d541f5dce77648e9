package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	LogLevel string
	DB       DatabaseConfig
}

// DatabaseConfig holds the PostgreSQL connection and pool settings
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	// Pool bounds: MinConns connections are opened at startup, Acquire never
	// checks out more than MaxConns at once.
	MinConns int
	MaxConns int
	// AcquireTimeout bounds how long Acquire waits for a free connection.
	// Zero means wait indefinitely.
	AcquireTimeout time.Duration
}

// ConfigurationError reports invalid or missing connection settings. It is the
// only fatal error kind: the process aborts before serving.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// LoadConfig loads the configuration from a .env file (if present) and the
// environment, validating it before the server starts.
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; real environment variables take precedence.
	_ = godotenv.Load()

	port, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_POOL_MIN_CONNS", 1)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_POOL_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	acquireMs, err := getEnvInt("DB_ACQUIRE_TIMEOUT_MS", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DB: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           port,
			Name:           getEnv("DB_NAME", "mcp_database"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			MinConns:       minConns,
			MaxConns:       maxConns,
			AcquireTimeout: time.Duration(acquireMs) * time.Millisecond,
		},
	}

	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return &ConfigurationError{Field: "DB_HOST", Reason: "must not be empty"}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ConfigurationError{Field: "DB_PORT", Reason: fmt.Sprintf("port %d out of range", c.Port)}
	}
	if c.Name == "" {
		return &ConfigurationError{Field: "DB_NAME", Reason: "must not be empty"}
	}
	if c.User == "" {
		return &ConfigurationError{Field: "DB_USER", Reason: "must not be empty"}
	}
	if c.MinConns < 1 {
		return &ConfigurationError{Field: "DB_POOL_MIN_CONNS", Reason: "must be at least 1"}
	}
	if c.MaxConns < c.MinConns {
		return &ConfigurationError{Field: "DB_POOL_MAX_CONNS", Reason: "must not be smaller than DB_POOL_MIN_CONNS"}
	}
	if c.AcquireTimeout < 0 {
		return &ConfigurationError{Field: "DB_ACQUIRE_TIMEOUT_MS", Reason: "must not be negative"}
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ConfigurationError{Field: key, Reason: fmt.Sprintf("%q is not an integer", value)}
	}
	return n, nil
}
