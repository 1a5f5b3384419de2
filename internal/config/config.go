// Package config handles meshconv configuration loading and management.
package config

import "time"

// Config holds all converter settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig holds per-file conversion settings.
type ConvertConfig struct {
	Target    string `yaml:"target"`     // Output format; empty uses the default pairing
	OutputDir string `yaml:"output_dir"` // Empty writes next to the source file
	Encoding  string `yaml:"encoding"`   // Source text encoding

	// TextureSize is the nominal texture resolution written to DAT
	// TEXTURES records when neither the mesh nor a probe supplies one.
	TextureSize   float64  `yaml:"texture_size"`
	ProbeTextures bool     `yaml:"probe_textures"`
	TextureDirs   []string `yaml:"texture_dirs"` // Searched after the source directory
}

// BatchConfig holds settings for multi-file runs.
type BatchConfig struct {
	Workers int           `yaml:"workers"`
	Report  string        `yaml:"report"`  // Path of the YAML report, empty for none
	Timeout time.Duration `yaml:"timeout"` // Whole-batch deadline, 0 for none
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Target:        "",
			OutputDir:     "",
			Encoding:      "utf-8",
			TextureSize:   256,
			ProbeTextures: false,
		},
		Batch: BatchConfig{
			Workers: 1,
			Report:  "",
			Timeout: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
