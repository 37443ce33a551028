package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server or viewer cannot run with.
func (c *Config) Validate() error {
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.TickRate <= 0 {
		return fmt.Errorf("viewer tick_rate must be positive, got %d", c.Viewer.TickRate)
	}
	if c.Viewer.MinFlyDistance < 0 {
		return fmt.Errorf("viewer min_fly_distance must not be negative, got %g", c.Viewer.MinFlyDistance)
	}
	if c.Viewer.FlyToDuration <= 0 {
		return fmt.Errorf("viewer fly_to_duration must be positive, got %s", c.Viewer.FlyToDuration)
	}
	if c.Assets.CheckWorkers <= 0 || c.Assets.CheckRate <= 0 {
		return fmt.Errorf("assets check_workers and check_rate must be positive")
	}
	if c.Catalog.Watch && c.Catalog.Path == "" {
		return fmt.Errorf("catalog watch requires catalog path")
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./valvesite.yaml",
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
		return filepath.Join(home, "Library", "Application Support", "Valvesite")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Valvesite")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "valvesite")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "valvesite")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
