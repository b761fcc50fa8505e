/**
 * @description
 * Configuration loader for the PriceTrack backend.
 * Responsible for reading environment variables, setting defaults, and performing strict validation.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files
 * - standard "os": For reading env vars
 *
 * @notes
 * - Fails fast if the database connection string is missing.
 * - Credentials pasted from dashboards often carry stray quotes; they are sanitized here.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pricetrack/backend/internal/logger"
)

// ErrMissingConfiguration indicates a required setting is absent from the environment.
var ErrMissingConfiguration = errors.New("missing configuration")

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	Firecrawl FirecrawlConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	Env  string // "development" or "production"
}

// DBConfig holds PostgreSQL settings
type DBConfig struct {
	URL string
}

// RedisConfig holds Redis settings. An empty URL disables the latest-price cache.
type RedisConfig struct {
	URL string
}

// FirecrawlConfig holds scrape API settings
type FirecrawlConfig struct {
	BaseURL string
	APIKey  string
}

// Load reads .env file and populates the Config struct
func Load() (*Config, error) {
	// Attempt to load .env, but don't crash if it fails (prod might inject env vars directly)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		DB: DBConfig{
			URL: sanitizeCredential(getEnv("DATABASE_URL", "")),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Firecrawl: FirecrawlConfig{
			BaseURL: getEnv("FIRECRAWL_URL", "https://api.firecrawl.dev"),
			APIKey:  sanitizeCredential(getEnv("FIRECRAWL_API_KEY", "")),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks for required variables
func validate(cfg *Config) error {
	if cfg.DB.URL == "" {
		return fmt.Errorf("%w: DATABASE_URL is required", ErrMissingConfiguration)
	}
	if cfg.Firecrawl.APIKey == "" && cfg.Server.Env != "test" {
		// Only scrape runs need the key; the API server can come up without it.
		logger.Info("Warning: FIRECRAWL_API_KEY is missing. Scrape runs will fail.")
	}
	return nil
}

// Helper to get env var with default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func sanitizeCredential(value string) string {
	trimmed := strings.TrimSpace(value)
	return strings.Trim(trimmed, "'\"")
}
