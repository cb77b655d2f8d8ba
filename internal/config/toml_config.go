package config

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

// parseTOML parses a .declgraph.toml document with the same shape as the
// KDL format.
func parseTOML(content []byte) (*Config, error) {
	cfg := Default()
	cfg.Include = nil

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	if len(cfg.Include) == 0 {
		cfg.Include = Default().Include
	}
	return cfg, nil
}
