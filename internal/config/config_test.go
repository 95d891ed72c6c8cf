package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seenimoa/fredseries/internal/infra"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	// Run from an empty directory so ./config/config.yaml is not picked up.
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// FRED defaults
	if cfg.FRED.BaseURL != "https://fred.stlouisfed.org/graph/fredgraph.csv" {
		t.Errorf("FRED.BaseURL: got %q", cfg.FRED.BaseURL)
	}
	if cfg.FRED.Timeout != 10*time.Second {
		t.Errorf("FRED.Timeout: got %v, want 10s", cfg.FRED.Timeout)
	}
	if cfg.FRED.UserAgent != infra.DefaultUserAgent {
		t.Errorf("FRED.UserAgent: got %q", cfg.FRED.UserAgent)
	}
	if cfg.FRED.RateLimit != 2 {
		t.Errorf("FRED.RateLimit: got %f, want 2", cfg.FRED.RateLimit)
	}
	if cfg.FRED.RateBurst != 5 {
		t.Errorf("FRED.RateBurst: got %d, want 5", cfg.FRED.RateBurst)
	}

	// Source defaults
	if cfg.Source.Kind != "fred" {
		t.Errorf("Source.Kind: got %q, want %q", cfg.Source.Kind, "fred")
	}
	if cfg.Source.Dir != "./data" {
		t.Errorf("Source.Dir: got %q, want %q", cfg.Source.Dir, "./data")
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "*" {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}
	if cfg.API.Addr() != "0.0.0.0:8080" {
		t.Errorf("API.Addr(): got %q", cfg.API.Addr())
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "console")
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
fred:
  base_url: "http://localhost:9999/fredgraph.csv"
  timeout: 3s
  rate_limit: 0
source:
  kind: "local"
  dir: "/srv/series"
api:
  port: 9090
  cors_origins: ["http://localhost:3000"]
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.FRED.BaseURL != "http://localhost:9999/fredgraph.csv" {
		t.Errorf("FRED.BaseURL: got %q", cfg.FRED.BaseURL)
	}
	if cfg.FRED.Timeout != 3*time.Second {
		t.Errorf("FRED.Timeout: got %v, want 3s", cfg.FRED.Timeout)
	}
	if cfg.FRED.RateLimit != 0 {
		t.Errorf("FRED.RateLimit: got %f, want 0", cfg.FRED.RateLimit)
	}
	if cfg.FRED.RateBurst != 5 {
		t.Errorf("FRED.RateBurst should keep its default, got %d", cfg.FRED.RateBurst)
	}
	if cfg.Source.Kind != "local" || cfg.Source.Dir != "/srv/series" {
		t.Errorf("Source: got %+v", cfg.Source)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestLoadFromFileRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad source kind", "source:\n  kind: \"s3\"\n"},
		{"bad log level", "logging:\n  level: \"verbose\"\n"},
		{"bad log format", "logging:\n  format: \"text\"\n"},
		{"bad base url", "fred:\n  base_url: \"not a url\"\n"},
		{"zero timeout", "fred:\n  timeout: 0s\n"},
		{"port out of range", "api:\n  port: 70000\n"},
		{"local without dir", "source:\n  kind: \"local\"\n  dir: \"\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatalf("write temp config: %v", err)
			}
			if _, err := LoadFromFile(path); err == nil {
				t.Errorf("LoadFromFile() should reject %s", tc.name)
			}
		})
	}
}

// ── Environment overrides ──

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  port: 9090\n"), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	t.Setenv("FREDSERIES_API_PORT", "7070")
	t.Setenv("FREDSERIES_FRED_TIMEOUT", "250ms")
	t.Setenv("FREDSERIES_SOURCE_KIND", "local")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.API.Port != 7070 {
		t.Errorf("API.Port: got %d, want 7070", cfg.API.Port)
	}
	if cfg.FRED.Timeout != 250*time.Millisecond {
		t.Errorf("FRED.Timeout: got %v, want 250ms", cfg.FRED.Timeout)
	}
	if cfg.Source.Kind != "local" {
		t.Errorf("Source.Kind: got %q, want local", cfg.Source.Kind)
	}
}

// ── homeDir ──

func TestHomeDir(t *testing.T) {
	t.Setenv("HOME", "/tmp/fredseries-home")
	if got := homeDir(); got != "/tmp/fredseries-home" {
		t.Errorf("homeDir(): got %q", got)
	}
}
