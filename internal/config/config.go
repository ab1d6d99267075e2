// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the screening service needs to start.
type Config struct {
	Port           int
	DatabaseURL    string
	GeminiAPIKey   string
	GeminiModel    string
	CallsPerMinute int
	Workers        int
}

// Load reads configuration from environment variables, with a .env file as
// an optional source for local development. A missing .env file is not an
// error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvInt("PORT", 8080),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnvString("GEMINI_MODEL", ""),
		CallsPerMinute: getEnvInt("AI_CALLS_PER_MINUTE", 0),
		Workers:        getEnvInt("SCREENING_WORKERS", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values. A missing Gemini
// key is allowed: the service starts with AI extraction unavailable and
// reports that through its API.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.CallsPerMinute < 0 {
		return fmt.Errorf("config error: AI_CALLS_PER_MINUTE must be non-negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: SCREENING_WORKERS must be non-negative")
	}
	return nil
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
