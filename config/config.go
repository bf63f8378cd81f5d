package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration parameters.
type Config struct {
	DatabaseURL    string
	RulesPath      string
	MigrationsPath string
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file for local development.
func Load() (*Config, error) {
	// A missing .env file is not fatal.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	rulesPath := os.Getenv("RULES_PATH")
	if rulesPath == "" {
		rulesPath = "rules.yaml"
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}

	return &Config{
		DatabaseURL:    dbURL,
		RulesPath:      rulesPath,
		MigrationsPath: migrationsPath,
	}, nil
}
