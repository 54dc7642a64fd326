// Package config loads torrentmeta settings.
//
// Configuration comes from a single YAML file named by the --config flag or, failing that, the
// TORRENTMETA_CONFIG environment variable. There is no automatic discovery. With neither set the
// defaults apply.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const EnvVar = "TORRENTMETA_CONFIG"

const (
	DefaultConcurrency = 8
	DefaultMaxDepth    = 512
)

type Config struct {
	// DefaultTrackers are appended by every `announce add`, after the URLs given on the command line.
	DefaultTrackers []string `yaml:"default_trackers"`

	// Backup keeps a compressed copy of each descriptor before it is overwritten.
	Backup bool `yaml:"backup"`

	// Concurrency bounds how many descriptors are processed at once.
	Concurrency int `yaml:"concurrency"`

	// MaxDepth bounds container nesting when decoding.
	MaxDepth int `yaml:"max_depth"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text, json, or auto (text on a terminal, json otherwise).
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Concurrency: DefaultConcurrency,
		MaxDepth:    DefaultMaxDepth,
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads the file at path, or at $TORRENTMETA_CONFIG when path is empty, over the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := cfg.parse(data); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// parse rejects unknown keys so a misspelt setting is not silently ignored.
func (c *Config) parse(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(c)
	if errors.Is(err, io.EOF) {
		return nil // empty file
	}
	return err
}

func (c *Config) Validate() error {
	var errs []error
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json", "auto":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text, json or auto, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
