package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port  int
	Debug bool

	// Database. Empty DatabaseURL selects the embedded sqlite store.
	DatabaseURL string
	SQLitePath  string

	// RabbitMQ. Empty disables event publishing.
	AMQPURL string

	// Amadeus pricing API
	AmadeusBaseURL   string
	AmadeusAPIKey    string
	AmadeusAPISecret string

	// CORS
	CORSOrigin string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnvInt("PORT", 3001),
		Debug:            getEnvBool("DEBUG", false),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("SQLITE_PATH", ""),
		AMQPURL:          getEnv("AMQP_URL", ""),
		AmadeusBaseURL:   getEnv("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusAPIKey:    getEnv("AMADEUS_API_KEY", ""),
		AmadeusAPISecret: getEnv("AMADEUS_API_SECRET", ""),
		CORSOrigin:       getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}

	if cfg.SQLitePath == "" {
		dir, err := WanderlistDir()
		if err != nil {
			return nil, err
		}
		cfg.SQLitePath = filepath.Join(dir, "wanderlist.db")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
