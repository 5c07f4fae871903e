package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir       string            `yaml:"data_dir,omitempty"`
	Width         int               `yaml:"width,omitempty"`
	Height        int               `yaml:"height,omitempty"`
	LockAspect    bool              `yaml:"lock_aspect,omitempty"`
	Format        string            `yaml:"format,omitempty"`
	Quality       int               `yaml:"quality,omitempty"`
	TargetSize    string            `yaml:"target_size,omitempty"`
	RetentionDays int               `yaml:"retention_days,omitempty"`
	Timeout       string            `yaml:"timeout,omitempty"` // time.ParseDuration syntax, e.g. "10m"
	Presets       map[string]Preset `yaml:"presets,omitempty"`

	path string
}

// Preset is a user-defined resize request. Unset fields fall back to the
// command flags.
type Preset struct {
	Width      int    `yaml:"width,omitempty"`
	Height     int    `yaml:"height,omitempty"`
	LockAspect bool   `yaml:"lock_aspect,omitempty"`
	Format     string `yaml:"format,omitempty"`
	Quality    int    `yaml:"quality,omitempty"`
	TargetSize string `yaml:"target_size,omitempty"`
}

const (
	DefaultTimeout       = 10 * time.Minute
	DefaultRetentionDays = 30

	// Environment variable names for configuration overrides
	EnvDataDir = "RESIZER_DATA_DIR"
	EnvQuality = "RESIZER_QUALITY"
)

func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "resizer"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultDataDir holds the catalog database and the stored images.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".resizer"
	}
	return filepath.Join(home, ".local", "share", "resizer")
}

// Load reads path, or the default location when path is empty. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		RetentionDays: DefaultRetentionDays,
		Presets:       make(map[string]Preset),
	}

	if path == "" {
		p, err := Path()
		if err == nil {
			path = p
		}
	}
	cfg.path = path

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	// Environment variables take precedence over config file
	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.DataDir = dir
	}
	if q := os.Getenv(EnvQuality); q != "" {
		var n int
		if _, err := fmt.Sscanf(q, "%d", &n); err == nil {
			cfg.Quality = n
		}
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if cfg.Presets == nil {
		cfg.Presets = make(map[string]Preset)
	}

	return cfg, nil
}

// Save writes the config back to the file it was loaded from.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) GetPreset(name string) (Preset, bool) {
	p, ok := c.Presets[name]
	return p, ok
}

func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "images.db")
}

func (c *Config) UploadsDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

// GetTimeout returns the configured per-command timeout, or the default if
// unset or unparseable.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}
