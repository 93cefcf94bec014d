package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port             int
	DevMode          bool
	DatabasePath     string
	JournalAPIURL    string // backend API serving records and balance checks
	JournalAPIToken  string
	PollSpec         string // cron spec for the balance poll cycle
	LogLevel         string
	TWDRate          float64 // USDT -> TWD display conversion
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8010),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		DatabasePath:    getEnv("DATABASE_PATH", "./data/dashboard.db"),
		JournalAPIURL:   getEnv("JOURNAL_API_URL", "http://localhost:3000"),
		JournalAPIToken: getEnv("JOURNAL_API_TOKEN", ""),
		PollSpec:        getEnv("BALANCE_POLL_SPEC", "@every 5m"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		TWDRate:         getEnvAsFloat("TWD_RATE", 32),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.JournalAPIURL == "" {
		return fmt.Errorf("JOURNAL_API_URL is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
