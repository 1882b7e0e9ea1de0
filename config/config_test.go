package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing provider", func(c *Config) { c.Model.Provider = "" }},
		{"missing model", func(c *Config) { c.Model.Model = "" }},
		{"temperature too high", func(c *Config) { c.Model.Temperature = 1.5 }},
		{"negative temperature", func(c *Config) { c.Model.Temperature = -0.1 }},
		{"missing backend url", func(c *Config) { c.Backend.URL = "" }},
		{"nats enabled without url", func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMergeOverlaysNonZeroFields(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		Model: ModelConfig{
			Provider:    "anthropic",
			Model:       "claude-sonnet-4-5",
			Temperature: 0.4,
		},
		Backend: BackendConfig{URL: "https://lights.example.com"},
		NATS:    NATSConfig{URL: "nats://localhost:4222", Enabled: true},
	})

	if base.Model.Provider != "anthropic" || base.Model.Model != "claude-sonnet-4-5" {
		t.Errorf("model = %+v", base.Model)
	}
	if base.Model.Temperature != 0.4 {
		t.Errorf("temperature = %v", base.Model.Temperature)
	}
	// Untouched fields keep their defaults.
	if base.Model.Timeout != 2*time.Minute {
		t.Errorf("timeout = %v", base.Model.Timeout)
	}
	if base.Backend.URL != "https://lights.example.com" {
		t.Errorf("backend url = %q", base.Backend.URL)
	}
	if !base.NATS.Enabled {
		t.Error("nats should be enabled after merge")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cuegen.yaml")
	content := `model:
  provider: anthropic
  model: claude-sonnet-4-5
  temperature: 0.3
backend:
  url: https://lights.example.com
fixture_library:
  path: /var/lib/cuegen/fixtures
  watch: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Model.Provider != "anthropic" {
		t.Errorf("provider = %q", cfg.Model.Provider)
	}
	if cfg.Model.Temperature != 0.3 {
		t.Errorf("temperature = %v", cfg.Model.Temperature)
	}
	if !cfg.FixtureLibrary.Watch || cfg.FixtureLibrary.Path != "/var/lib/cuegen/fixtures" {
		t.Errorf("fixture library = %+v", cfg.FixtureLibrary)
	}
	// Defaults survive for unspecified fields.
	if cfg.Backend.Timeout != 30*time.Second {
		t.Errorf("backend timeout = %v", cfg.Backend.Timeout)
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Model.Provider = "openai"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.Model.Provider != "openai" {
		t.Errorf("provider = %q", loaded.Model.Provider)
	}
}
