package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STRAVA_CLIENT_ID", "client_id")
	t.Setenv("STRAVA_CLIENT_SECRET", "client_secret")
	t.Setenv("STRAVA_REDIRECT_URI", "http://localhost:8001/api/auth/strava/callback")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got %s", cfg.Host)
	}
	if cfg.Port != 8001 {
		t.Errorf("Expected port 8001, got %d", cfg.Port)
	}
	if cfg.DatabasePath != "./fittracker.db" {
		t.Errorf("Expected default database path, got %s", cfg.DatabasePath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level 'info', got %s", cfg.LogLevel)
	}
	if cfg.MetricsEnabled {
		t.Error("Expected metrics disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("METRICS_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Expected host '0.0.0.0', got %s", cfg.Host)
	}
	if cfg.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level 'debug', got %s", cfg.LogLevel)
	}
	if !cfg.MetricsEnabled {
		t.Error("Expected metrics enabled")
	}
	if cfg.MetricsPort != 9100 {
		t.Errorf("Expected metrics port 9100, got %d", cfg.MetricsPort)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "client_id")
	t.Setenv("STRAVA_CLIENT_SECRET", "")
	t.Setenv("STRAVA_REDIRECT_URI", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for missing required variables")
	}
	if !strings.Contains(err.Error(), "STRAVA_CLIENT_SECRET") {
		t.Errorf("Expected error to name STRAVA_CLIENT_SECRET, got %v", err)
	}
	if !strings.Contains(err.Error(), "STRAVA_REDIRECT_URI") {
		t.Errorf("Expected error to name STRAVA_REDIRECT_URI, got %v", err)
	}
}

func TestGetEnvIntInvalidFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Port != 8001 {
		t.Errorf("Expected fallback port 8001, got %d", cfg.Port)
	}
}
