package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath returns ~/.earthfeed/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".earthfeed", "config.yaml"), nil
}

// LoadFile loads configuration from path on top of Default. Returns nil if
// the file doesn't exist (not an error). Returns error if the file exists
// but cannot be parsed.
func LoadFile(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Load resolves the configuration: defaults, then the file at path (when
// it exists; an empty path means DefaultPath), then the environment. The
// result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if fileCfg != nil {
			cfg = fileCfg
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
