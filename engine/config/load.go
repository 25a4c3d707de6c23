package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file.
// An empty path returns the defaults.
//
// Parameters:
//   - path: the YAML file to read, or "" for defaults only
//
// Returns:
//   - *Config: the merged configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := mergeYAML(cfg, data); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromBytes merges YAML data over the defaults.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - *Config: the merged configuration
//   - error: error if the document cannot be parsed or validated
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := mergeYAML(cfg, data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeYAML(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	return nil
}

// SaveTo writes the config to a specific path, creating parent directories.
//
// Parameters:
//   - path: destination file
//
// Returns:
//   - error: error if the file cannot be written
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
