package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if cfg.AI == nil || cfg.AI.Model == "" {
		t.Error("expected a default AI model")
	}
	if cfg.FetchTimeout == "" {
		t.Error("expected fetch_timeout to be set")
	}
}

func TestFetchTimeoutDuration(t *testing.T) {
	cfg := &Config{FetchTimeout: "30s"}
	if d := cfg.FetchTimeoutDuration(); d != 30*time.Second {
		t.Errorf("expected 30s, got %v", d)
	}

	cfg.FetchTimeout = "invalid"
	if d := cfg.FetchTimeoutDuration(); d != 90*time.Second {
		t.Errorf("expected 90s default for invalid timeout, got %v", d)
	}
}

func TestAIKeyPrecedence(t *testing.T) {
	t.Setenv("MARKETLENS_API_KEY", "env-key")

	cfg := &Config{AI: &AIConfig{APIKey: "config-key"}}
	if got := cfg.AIKey(); got != "config-key" {
		t.Errorf("config key should win, got %q", got)
	}

	cfg.AI.APIKey = ""
	if got := cfg.AIKey(); got != "env-key" {
		t.Errorf("env key should be the fallback, got %q", got)
	}
}

func TestAIEnabled(t *testing.T) {
	t.Setenv("MARKETLENS_API_KEY", "")
	cfg := &Config{}
	if cfg.AIEnabled() {
		t.Error("expected AI disabled with no key anywhere")
	}
	cfg.AI = &AIConfig{APIKey: "k"}
	if !cfg.AIEnabled() {
		t.Error("expected AI enabled with config key")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AI == nil || cfg.AI.Model == "" {
		t.Error("defaults not applied")
	}
	// First run writes the defaults next to the requested path
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected defaults written to %s: %v", path, err)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "fetch_timeout: 45s\ndb_path: /tmp/custom.db\nai:\n  model: gemini-2.5-pro\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AI.Model != "gemini-2.5-pro" {
		t.Errorf("model = %q", cfg.AI.Model)
	}
	if cfg.StorePath() != "/tmp/custom.db" {
		t.Errorf("store path = %q", cfg.StorePath())
	}
	if cfg.FetchTimeoutDuration() != 45*time.Second {
		t.Errorf("timeout = %v", cfg.FetchTimeoutDuration())
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ai: [not a map"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
