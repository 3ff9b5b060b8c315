// Package config loads the slipway.yaml tool configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds tool-level settings for the simulated pipeline.
type Config struct {
	// Host is the hosting apex domain for published URLs.
	Host string `yaml:"host"`
	// Delay is the base emission delay, in time.ParseDuration syntax.
	Delay string `yaml:"delay"`
	// MaxSourceKB caps the accepted source bundle size.
	MaxSourceKB int `yaml:"max_source_kb"`
	// Theme selects the TUI color theme: dark, light, or auto.
	Theme string `yaml:"theme"`

	// StageDelay is the parsed form of Delay, resolved by Parse.
	StageDelay time.Duration `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Host:        "slipway.app",
		Delay:       "400ms",
		MaxSourceKB: 512,
		StageDelay:  400 * time.Millisecond,
	}
}

// Parse decodes yaml data into a Config, applying defaults for absent
// fields and validating the rest.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config: host must not be empty")
	}
	if cfg.MaxSourceKB <= 0 {
		return nil, fmt.Errorf("config: max_source_kb must be positive, got %d", cfg.MaxSourceKB)
	}
	d, err := time.ParseDuration(cfg.Delay)
	if err != nil {
		return nil, fmt.Errorf("config: invalid delay %q: %w", cfg.Delay, err)
	}
	if d < 0 {
		return nil, fmt.Errorf("config: delay must not be negative, got %s", cfg.Delay)
	}
	cfg.StageDelay = d
	return cfg, nil
}

// Load reads and parses a slipway.yaml file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}
