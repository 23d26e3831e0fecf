// Package config handles loading and saving hm configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/hm/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ViewConfig holds viewport preferences.
type ViewConfig struct {
	MinZoom float64 `yaml:"min_zoom,omitempty"`
	MaxZoom float64 `yaml:"max_zoom,omitempty"`
	FPS     int     `yaml:"fps,omitempty"`
}

// Config is the top-level configuration for hm.
type Config struct {
	// Source is the default inventory path (hunt.db or snapshot JSON).
	Source string `yaml:"source,omitempty"`
	// Hunt is the default hunt id to load.
	Hunt string `yaml:"hunt,omitempty"`
	// Watch enables auto-refresh when the source file changes.
	Watch bool `yaml:"watch,omitempty"`
	// ExportDir is where graph snapshots are written.
	ExportDir string     `yaml:"export_dir,omitempty"`
	View      ViewConfig `yaml:"view,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ExportDir: ".",
		View: ViewConfig{
			MinZoom: 0.2,
			MaxZoom: 5.0,
			FPS:     30,
		},
	}
}

// ConfigDir returns the XDG config directory for hm.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "hm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hm")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Source = expandHome(cfg.Source)
	cfg.ExportDir = expandHome(cfg.ExportDir)
	if cfg.View.FPS <= 0 {
		cfg.View.FPS = DefaultConfig().View.FPS
	}
	if cfg.View.MinZoom <= 0 || cfg.View.MaxZoom <= cfg.View.MinZoom {
		cfg.View.MinZoom = DefaultConfig().View.MinZoom
		cfg.View.MaxZoom = DefaultConfig().View.MaxZoom
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
