// Package config provides configuration loading and management for cuegen.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete cuegen configuration.
type Config struct {
	Model          ModelConfig          `yaml:"model"`
	Backend        BackendConfig        `yaml:"backend"`
	NATS           NATSConfig           `yaml:"nats"`
	FixtureLibrary FixtureLibraryConfig `yaml:"fixture_library"`
}

// ModelConfig configures the completion service.
type ModelConfig struct {
	// Provider selects the completion provider (anthropic, openai, ollama).
	Provider string `yaml:"provider"`
	// Model is the model identifier sent to the provider.
	Model string `yaml:"model"`
	// Endpoint overrides the provider's default API endpoint.
	Endpoint string `yaml:"endpoint"`
	// Temperature controls randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for a completion.
	Timeout time.Duration `yaml:"timeout"`
}

// BackendConfig configures the lighting persistence service connection.
type BackendConfig struct {
	// URL is the backend base URL.
	URL string `yaml:"url"`
	// APIKey authenticates backend requests when set.
	APIKey string `yaml:"api_key"`
	// Timeout bounds each backend call.
	Timeout time.Duration `yaml:"timeout"`
}

// NATSConfig configures the service transport.
type NATSConfig struct {
	// URL is the NATS server URL.
	URL string `yaml:"url"`
	// Enabled controls whether the NATS service surface is started.
	Enabled bool `yaml:"enabled"`
}

// FixtureLibraryConfig configures the on-disk fixture profile library.
type FixtureLibraryConfig struct {
	// Path is the profile directory. Empty disables the library.
	Path string `yaml:"path"`
	// Watch reloads profiles when files change.
	Watch bool `yaml:"watch"`
	// Debounce is how long to wait for more changes before reloading.
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "ollama",
			Model:       "qwen2.5:32b",
			Endpoint:    "",
			Temperature: 0.7,
			Timeout:     2 * time.Minute,
		},
		Backend: BackendConfig{
			URL:     "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		NATS: NATSConfig{
			URL:     "",
			Enabled: false,
		},
		FixtureLibrary: FixtureLibraryConfig{
			Path:     "",
			Watch:    false,
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Model == "" {
		return fmt.Errorf("model.model is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats.enabled is set")
	}
	return nil
}

// Merge overlays non-zero fields from other onto c.
func (c *Config) Merge(other *Config) {
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Model != "" {
		c.Model.Model = other.Model.Model
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	if other.Backend.URL != "" {
		c.Backend.URL = other.Backend.URL
	}
	if other.Backend.APIKey != "" {
		c.Backend.APIKey = other.Backend.APIKey
	}
	if other.Backend.Timeout != 0 {
		c.Backend.Timeout = other.Backend.Timeout
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Enabled {
		c.NATS.Enabled = true
	}

	if other.FixtureLibrary.Path != "" {
		c.FixtureLibrary.Path = other.FixtureLibrary.Path
	}
	if other.FixtureLibrary.Watch {
		c.FixtureLibrary.Watch = true
	}
	if other.FixtureLibrary.Debounce != 0 {
		c.FixtureLibrary.Debounce = other.FixtureLibrary.Debounce
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return config, nil
}

// SaveToFile writes the configuration as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
