package config

import (
	"fmt"
	"os"
	"time"

	"github.com/inhome/registry/internal/auth"
)

// Config holds the application configuration
type Config struct {
	DatabaseURL string
	Port        string
	SessionTTL  time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:       "8080", // default port
		SessionTTL: auth.DefaultSessionTTL,
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	cfg.DatabaseURL = databaseURL

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("SESSION_TTL must be positive")
		}
		cfg.SessionTTL = d
	}

	return cfg, nil
}
