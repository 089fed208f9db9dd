// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
)

// Config holds application configuration values.
type Config struct {
	// HTTPPort is the listen port for the HTTP server.
	HTTPPort string

	// DBPath is the SQLite database file path.
	DBPath string

	// StaticPath is the directory served for non-API routes, empty to
	// disable static serving.
	StaticPath string
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	cfg := Config{
		HTTPPort:   getEnv("HTTP_PORT", "8080"),
		DBPath:     getEnv("DB_PATH", "./data/receipts.db"),
		StaticPath: os.Getenv("STATIC_PATH"),
	}
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		cfg.HTTPPort = "8080"
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
