// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Granularity values.
const (
	GranularityObject = "object"
	GranularityScene  = "scene"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config holds all converter settings.
type Config struct {
	Output   OutputConfig   `yaml:"output" toml:"output"`
	Convert  ConvertConfig  `yaml:"convert" toml:"convert"`
	Textures TexturesConfig `yaml:"textures" toml:"textures"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// OutputConfig holds where converted files are written.
type OutputConfig struct {
	Dir     string `yaml:"dir" toml:"dir"`
	Name    string `yaml:"name" toml:"name"`         // Document name; defaults to the scene name
	BaseURI string `yaml:"base_uri" toml:"base_uri"` // Prefix for sibling file URIs
}

// ConvertConfig holds pipeline settings.
type ConvertConfig struct {
	Granularity      string `yaml:"granularity" toml:"granularity"` // "object" or "scene"
	Generator        string `yaml:"generator" toml:"generator"`
	IDPrefix         string `yaml:"id_prefix" toml:"id_prefix"`
	DefaultTechnique bool   `yaml:"default_technique" toml:"default_technique"`
}

// TexturesConfig holds texture fetching settings.
type TexturesConfig struct {
	Sources       []string `yaml:"sources" toml:"sources"`               // Asset directories, later ones win
	MaxResolution int      `yaml:"max_resolution" toml:"max_resolution"` // 0 keeps source size
	Workers       int      `yaml:"workers" toml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir: "out",
		},
		Convert: ConvertConfig{
			Granularity:      GranularityObject,
			Generator:        "primgltf",
			DefaultTechnique: false,
		},
		Textures: TexturesConfig{
			Sources:       []string{"assets"},
			MaxResolution: 1024,
			Workers:       4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the config for values the converter cannot run with.
func (c *Config) Validate() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir is empty", ErrInvalid)
	}
	switch c.Convert.Granularity {
	case GranularityObject, GranularityScene:
	default:
		return fmt.Errorf("%w: convert.granularity %q, want %q or %q",
			ErrInvalid, c.Convert.Granularity, GranularityObject, GranularityScene)
	}
	if c.Textures.MaxResolution < 0 {
		return fmt.Errorf("%w: textures.max_resolution %d", ErrInvalid, c.Textures.MaxResolution)
	}
	if c.Textures.Workers < 1 {
		return fmt.Errorf("%w: textures.workers %d", ErrInvalid, c.Textures.Workers)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}
