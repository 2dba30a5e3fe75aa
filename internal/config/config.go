// Package config loads settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Dashboard DashboardConfig
	API       APIConfig
	DB        DatabaseConfig
	Log       LogConfig
}

type DashboardConfig struct {
	Addr string
	// APIURL is the base URL of the /foods resource.
	APIURL     string
	APITimeout time.Duration
}

type APIConfig struct {
	Addr     string
	SeedFile string
}

type DatabaseConfig struct {
	URL        string // PostgreSQL; empty selects SQLite
	SQLitePath string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("API_TIMEOUT: %w", err)
	}
	pretty, err := strconv.ParseBool(getEnv("LOG_PRETTY", "true"))
	if err != nil {
		return nil, fmt.Errorf("LOG_PRETTY: %w", err)
	}

	return &Config{
		Dashboard: DashboardConfig{
			Addr:       getEnv("DASHBOARD_ADDR", ":8080"),
			APIURL:     getEnv("API_URL", "http://localhost:3333"),
			APITimeout: timeout,
		},
		API: APIConfig{
			Addr:     getEnv("API_ADDR", ":3333"),
			SeedFile: getEnv("SEED_FILE", ""),
		},
		DB: DatabaseConfig{
			URL:        getEnv("DATABASE_URL", ""),
			SQLitePath: getEnv("SQLITE_PATH", "gorestaurant.db"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: pretty,
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
