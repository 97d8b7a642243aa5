package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	Sync      SyncConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// SyncConfig holds feed reconciliation settings
type SyncConfig struct {
	Interval       time.Duration // time between dispatch runs
	MaxConcurrent  int           // cap on parallel per-source reconciliations
	FailureRatio   float64       // item failure ratio above which a run fails
	FetchTimeout   time.Duration // per-feed HTTP timeout
	FetchRateLimit float64       // outbound feed requests per second
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "3400"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "feedsync"),
		},
		Sync: SyncConfig{
			Interval:       time.Duration(getEnvInt("SYNC_INTERVAL_MINUTES", 60)) * time.Minute,
			MaxConcurrent:  getEnvInt("SYNC_MAX_CONCURRENT", 3),
			FailureRatio:   getEnvFloat("SYNC_FAILURE_RATIO", 0.5),
			FetchTimeout:   time.Duration(getEnvInt("SYNC_FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
			FetchRateLimit: getEnvFloat("SYNC_FETCH_RATE_LIMIT", 2),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
