// Package config loads project configuration for the declgraph CLI from
// .declgraph.kdl, with a TOML fallback for projects that prefer it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultConfigName is the config file looked up in the project root.
const DefaultConfigName = ".declgraph.kdl"

type Config struct {
	Project     Project     `toml:"project"`
	Include     []string    `toml:"include"`
	Exclude     []string    `toml:"exclude"`
	Output      Output      `toml:"output"`
	Performance Performance `toml:"performance"`
	Verbose     bool        `toml:"verbose"`
}

type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

type Output struct {
	Format string `toml:"format"` // "json" only, for now
	Path   string `toml:"path"`   // empty writes to stdout
}

type Performance struct {
	ParallelFileWorkers int `toml:"parallel_file_workers"` // 0 = auto-detect (NumCPU)
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	root, _ := os.Getwd()
	if root == "" {
		root = "."
	}
	return &Config{
		Project: Project{Root: root},
		Include: []string{"**/*.swift"},
		Exclude: []string{},
		Output:  Output{Format: "json"},
	}
}

// Load reads configuration from the given path. A missing file yields the
// defaults; the format is chosen by extension (.toml, otherwise KDL).
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg *Config
	if strings.HasSuffix(path, ".toml") {
		cfg, err = parseTOML(content)
	} else {
		cfg, err = parseKDL(string(content))
	}
	if err != nil {
		return nil, err
	}

	resolveRoot(cfg, filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveRoot makes the project root absolute, resolving relative roots
// against the directory containing the config file.
func resolveRoot(cfg *Config, configDir string) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = configDir
	}
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(configDir, cfg.Project.Root)
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)
}

// Validate checks field ranges and fills derived defaults.
func (c *Config) Validate() error {
	if c.Performance.ParallelFileWorkers < 0 {
		return fmt.Errorf("performance.parallel_file_workers must be >= 0, got %d", c.Performance.ParallelFileWorkers)
	}
	if c.Performance.ParallelFileWorkers == 0 {
		c.Performance.ParallelFileWorkers = runtime.NumCPU()
	}
	switch c.Output.Format {
	case "", "json":
		c.Output.Format = "json"
	default:
		return fmt.Errorf("unsupported output format %q", c.Output.Format)
	}
	if len(c.Include) == 0 {
		c.Include = []string{"**/*.swift"}
	}
	return nil
}
