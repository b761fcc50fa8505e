package config

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pricetrack/backend/internal/logger"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingConfiguration) {
		t.Fatalf("expected ErrMissingConfiguration, got %v", err)
	}
}

func TestLoadSanitizesCredentials(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", ` "postgresql://u@db.example.com/app" `)
	t.Setenv("FIRECRAWL_API_KEY", `'fc-key'`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DB.URL != "postgresql://u@db.example.com/app" {
		t.Fatalf("DATABASE_URL not sanitized: %q", cfg.DB.URL)
	}
	if cfg.Firecrawl.APIKey != "fc-key" {
		t.Fatalf("API key not sanitized: %q", cfg.Firecrawl.APIKey)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgresql://u@db.example.com/app")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port == "" {
		t.Fatal("expected default port")
	}
	if cfg.Firecrawl.BaseURL == "" {
		t.Fatal("expected default firecrawl base url")
	}
}

func TestLoadWarnsThroughLogger(t *testing.T) {
	t.Setenv("GO_ENV", "development")
	t.Setenv("DATABASE_URL", "postgresql://u@db.example.com/app")
	t.Setenv("FIRECRAWL_API_KEY", "")

	var buf bytes.Buffer
	previous := logger.InfoLogger.Writer()
	logger.InfoLogger.SetOutput(&buf)
	defer logger.InfoLogger.SetOutput(previous)

	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "FIRECRAWL_API_KEY") {
		t.Fatalf("missing-key warning not routed through logger, got %q", buf.String())
	}
}
