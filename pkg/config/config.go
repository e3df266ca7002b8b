// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	// Optional storage collaborator; nil when no database is configured.
	Postgres *PostgresConfig

	// Pipeline settings
	WorkerCount int // 0 means use runtime.NumCPU()
	TopTypes    int // complaint-type ranking size in summaries

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from the environment. A .env file in the
// working directory is merged in first when present; a missing file is not
// an error.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		WorkerCount: getEnvAsInt("WORKER_COUNT", 0),
		TopTypes:    getEnvAsInt("TOP_COMPLAINT_TYPES", 10),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
	}

	// The cleaned-table store is optional: the pipeline itself is an
	// in-memory batch job and Postgres is only needed to materialize runs.
	if os.Getenv("POSTGRES_HOST") != "" {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.WorkerCount < 0 {
		return errors.New("worker count cannot be negative")
	}

	if c.TopTypes <= 0 {
		return errors.New("top complaint type count must be positive")
	}

	if c.Postgres != nil {
		if err := c.Postgres.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
