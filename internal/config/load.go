package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds a Config with priority: defaults < file. path may be empty,
// in which case the defaults are returned unmodified; the caller (a cobra
// command) is responsible for the next priority tier, applying any
// explicit flags on top of the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
