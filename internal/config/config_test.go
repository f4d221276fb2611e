package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "REDIS_URL", "SESSION_TTL", "CATALOG_SOURCE", "MAX_IMPORT_BYTES"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Environment != "development" || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RedisURL != "localhost:6379" || cfg.SessionTTL != time.Hour {
		t.Errorf("unexpected storage defaults: %+v", cfg)
	}
	if cfg.CatalogSource != "" || cfg.MaxImportBytes != 1<<20 {
		t.Errorf("unexpected import defaults: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("CATALOG_SOURCE", "https://example.com/items.json")
	t.Setenv("MAX_IMPORT_BYTES", "4096")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.Environment != "production" || cfg.LogLevel != slog.LevelWarn {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.RedisURL != "redis://cache:6379/2" || cfg.SessionTTL != 15*time.Minute {
		t.Errorf("unexpected storage config: %+v", cfg)
	}
	if cfg.CatalogSource != "https://example.com/items.json" || cfg.MaxImportBytes != 4096 {
		t.Errorf("unexpected import config: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SESSION_TTL", "soon"},
		{"SESSION_TTL", "-5m"},
		{"MAX_IMPORT_BYTES", "lots"},
		{"MAX_IMPORT_BYTES", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("SESSION_TTL", "")
			t.Setenv("MAX_IMPORT_BYTES", "")
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
