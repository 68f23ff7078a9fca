// Package config holds the chamber configuration: vendor credentials, the
// server port, canvas locations, and optional per-daimon overrides loaded
// from daimon.yaml. Environment variables win over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"daimon/internal/perception"
	"daimon/internal/registry"
)

// Config holds all chamber configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Web surface
	Server ServerConfig `yaml:"server"`

	// Vendor adapters, one per wire protocol
	Vendors VendorsConfig `yaml:"vendors"`

	// Resonance field session root
	Resonance ResonanceConfig `yaml:"resonance"`

	// Per-daimon model/persona overrides, keyed by registry tag
	Daimones map[string]DaimonOverride `yaml:"daimones"`
}

// ServerConfig configures the web surface.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	CanvasDir string `yaml:"canvas_dir"`
}

// VendorsConfig configures the two vendor adapters.
type VendorsConfig struct {
	Generative VendorConfig `yaml:"generative"`
	Messages   VendorConfig `yaml:"messages"`
}

// VendorConfig configures one vendor backend. Timeout is in minutes because
// image generation runs for minutes, not seconds.
type VendorConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutMinutes int    `yaml:"timeout_minutes"`
}

// ResonanceConfig configures the resonance field.
type ResonanceConfig struct {
	SessionsDir string `yaml:"sessions_dir"`
}

// DaimonOverride swaps a daimon's model or persona without touching code.
type DaimonOverride struct {
	Model  string `yaml:"model"`
	Nature string `yaml:"nature"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "daimon",
		Version: "1.0.0",

		Server: ServerConfig{
			Port:      4455,
			CanvasDir: "canvas",
		},

		Vendors: VendorsConfig{
			Generative: VendorConfig{TimeoutMinutes: 5},
			Messages:   VendorConfig{TimeoutMinutes: 2},
		},

		Resonance: ResonanceConfig{
			SessionsDir: filepath.Join("canvas", "resonance"),
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Vendors.Generative.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Vendors.Messages.APIKey = key
	}
	if dir := os.Getenv("DAIMON_CANVAS_DIR"); dir != "" {
		c.Server.CanvasDir = dir
	}
}

// GenerativeConfig returns the generative adapter configuration.
func (c *Config) GenerativeConfig() perception.GenerativeConfig {
	return perception.GenerativeConfig{
		APIKey:  c.Vendors.Generative.APIKey,
		BaseURL: c.Vendors.Generative.BaseURL,
		Timeout: perception.TimeoutMinutes(c.Vendors.Generative.TimeoutMinutes),
	}
}

// MessagesConfig returns the messages adapter configuration.
func (c *Config) MessagesConfig() perception.MessagesConfig {
	return perception.MessagesConfig{
		APIKey:  c.Vendors.Messages.APIKey,
		BaseURL: c.Vendors.Messages.BaseURL,
		Timeout: perception.TimeoutMinutes(c.Vendors.Messages.TimeoutMinutes),
	}
}

// ApplyDaimonOverrides pushes the daimones section into the registry. Must
// run before the registry is sealed.
func (c *Config) ApplyDaimonOverrides() error {
	for name, o := range c.Daimones {
		if err := registry.Override(name, o.Model, o.Nature); err != nil {
			return fmt.Errorf("daimon override %q: %w", name, err)
		}
	}
	return nil
}

// Validate checks that every requested participant is known and that its
// vendor has a credential. A failed check is a configuration error, not a
// reason to crash the process serving other sessions.
func (c *Config) Validate(participants []string) error {
	for _, name := range participants {
		d, ok := registry.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown daimon: %s", name)
		}
		switch d.Vendor {
		case registry.VendorGenerative:
			if c.Vendors.Generative.APIKey == "" {
				return fmt.Errorf("GEMINI_API_KEY required for %s", name)
			}
		case registry.VendorMessages:
			if c.Vendors.Messages.APIKey == "" {
				return fmt.Errorf("ANTHROPIC_API_KEY required for %s", name)
			}
		}
	}
	return nil
}
