package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("expected file backend by default, got %q", cfg.Store.Backend)
	}
	if cfg.Store.HistoryLimit != 20 {
		t.Errorf("expected history limit 20, got %d", cfg.Store.HistoryLimit)
	}
	if cfg.Gemini.Model == "" || cfg.Gemini.ImageModel == "" {
		t.Error("model names must have defaults")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("HISTORY_LIMIT", "5")
	t.Setenv("GEMINI_TIMEOUT", "90s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Store.Backend != "redis" {
		t.Errorf("expected redis backend, got %q", cfg.Store.Backend)
	}
	if cfg.Store.HistoryLimit != 5 {
		t.Errorf("expected history limit 5, got %d", cfg.Store.HistoryLimit)
	}
	if cfg.Gemini.Timeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %s", cfg.Gemini.Timeout)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]struct {
		key   string
		value string
	}{
		"non-numeric port":  {"PORT", "not-a-port"},
		"port out of range": {"PORT", "70000"},
		"unknown backend":   {"STORE_BACKEND", "dynamo"},
		"zero history":      {"HISTORY_LIMIT", "0"},
	}

	for name, testCase := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(testCase.key, testCase.value)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("expected an error for %s=%s", testCase.key, testCase.value)
			}
		})
	}
}

func TestInvalidDurationFallsBackToDefault(t *testing.T) {
	t.Setenv("SCRAPER_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Scraper.RequestTimeout != 30*time.Second {
		t.Errorf("expected the 30s default, got %s", cfg.Scraper.RequestTimeout)
	}
}
