package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the flagwise home directory.
const HomeEnv = "FLAGWISE_HOME"

// GetHome returns the flagwise home directory, creating it if needed.
// Priority order:
//  1. FLAGWISE_HOME environment variable
//  2. ~/.flagwise
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate user home: %w", err)
		}
		home = filepath.Join(userHome, ".flagwise")
	}

	if err := os.MkdirAll(home, 0700); err != nil {
		return "", fmt.Errorf("failed to create flagwise home directory: %w", err)
	}
	return home, nil
}

// Path returns the config file location inside home.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Load resolves the home directory and loads, validates and resolves its config.
func Load() (*Config, string, error) {
	home, err := GetHome()
	if err != nil {
		return nil, "", err
	}
	cfg, err := LoadFrom(home)
	return cfg, home, err
}

// LoadFrom loads the config inside an explicit home directory.
func LoadFrom(home string) (*Config, error) {
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, fmt.Errorf("failed to create flagwise home directory: %w", err)
	}
	cfg, err := LoadConfig(Path(home))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", Path(home), err)
	}
	return cfg.Resolve(home), nil
}
