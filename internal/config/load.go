package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./meshconv.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "meshconv")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "meshconv")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "meshconv")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "meshconv")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks values that cannot be corrected later.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Convert.Target) {
	case "", "dat", "mesh", "obj":
	default:
		return fmt.Errorf("convert.target: unknown format %q", c.Convert.Target)
	}
	if c.Convert.TextureSize <= 0 {
		return fmt.Errorf("convert.texture_size: must be positive, got %g", c.Convert.TextureSize)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers: must be at least 1, got %d", c.Batch.Workers)
	}
	if c.Batch.Timeout < 0 {
		return fmt.Errorf("batch.timeout: must not be negative, got %s", c.Batch.Timeout)
	}
	return nil
}
