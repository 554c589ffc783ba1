// Package config loads supdump settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the settings for a supdump run.
type Config struct {
	// Format selects per-packet output: "text" or "json".
	Format string `yaml:"format"`
	// Workers bounds how many files are decoded concurrently.
	Workers int `yaml:"workers"`
	// DisplaySets prints assembled display sets instead of raw packets.
	DisplaySets bool `yaml:"display_sets"`
	// Summary prints per-file statistics after the packets.
	Summary bool `yaml:"summary"`
	// Quiet suppresses per-packet output.
	Quiet bool   `yaml:"quiet"`
	Debug bool   `yaml:"debug"`
	Log   string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Format:  FormatText,
		Workers: 4,
		Log:     "info",
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file. The result is not validated: callers layer
// command-line flags on top and then call [Config.Validate].
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Format = envOr("SUPDUMP_FORMAT", c.Format)
	c.Log = envOr("SUPDUMP_LOG_LEVEL", c.Log)
	if v := os.Getenv("SUPDUMP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: SUPDUMP_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if os.Getenv("DEBUG") != "" {
		c.Debug = true
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level for the configured log level. Debug forces
// slog.LevelDebug.
func (c *Config) Level() (slog.Level, error) {
	if c.Debug {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
