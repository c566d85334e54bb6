package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string

	// Database configuration
	DatabaseURL string

	// Dashboard configuration
	DashboardAddr string

	// Builder configuration
	ApplyEditDelay time.Duration // pause between guild mutation calls

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables. A .env file in the
// working directory fills in anything not already set.
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		// Defaults
		DashboardAddr:  ":8080",
		ApplyEditDelay: 500 * time.Millisecond,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if addr := os.Getenv("DASHBOARD_ADDR"); addr != "" {
		config.DashboardAddr = addr
	}
	if delay := os.Getenv("APPLY_EDIT_DELAY_MS"); delay != "" {
		if parsed, err := strconv.Atoi(delay); err == nil && parsed >= 0 {
			config.ApplyEditDelay = time.Duration(parsed) * time.Millisecond
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
