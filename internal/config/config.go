// Package config loads and saves user-level configuration from
// ~/.config/lumen/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	Model                  string `yaml:"model"`
	ProjectsRoot           string `yaml:"projects_root"`
	LinkStyle              string `yaml:"link_style"` // "markdown" or "obsidian"
	DefaultUnitsPerProject int    `yaml:"default_units_per_project"`
	BackupProjects         bool   `yaml:"backup_projects"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Model:                  "",
		ProjectsRoot:           filepath.Join(home, "lumen-projects"),
		LinkStyle:              "markdown",
		DefaultUnitsPerProject: 3,
		BackupProjects:         true,
	}
}

// Path returns the config file location
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(configDir, "lumen", "config.yaml"), nil
}

// Load reads the config file, returning defaults when it does not exist
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.LinkStyle != "markdown" && cfg.LinkStyle != "obsidian" {
		return nil, fmt.Errorf("invalid link_style %q in %s (want markdown or obsidian)", cfg.LinkStyle, path)
	}
	return cfg, nil
}

// Save writes the config file, creating its directory if needed
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
