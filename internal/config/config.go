// Package config holds the pipeline configuration and its YAML loader.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultOutputDir matches the static folder the web front end serves from.
const DefaultOutputDir = "static"

// maxFileSize caps config files at 1MB.
const maxFileSize = 1 * 1024 * 1024

// Config is passed explicitly to the pipeline; nothing reads it globally.
type Config struct {
	// OutputDir receives every stage artifact.
	OutputDir string `yaml:"output_dir"`

	// IsolateRuns writes each run into OutputDir/<run id>. When false, runs
	// share OutputDir and same-named inputs overwrite each other.
	IsolateRuns bool `yaml:"isolate_runs"`

	Debug bool `yaml:"debug"`

	// Stages overrides algorithm parameters per stage name.
	Stages map[string]map[string]interface{} `yaml:"stages,omitempty"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		OutputDir:   DefaultOutputDir,
		IsolateRuns: true,
		Stages:      map[string]map[string]interface{}{},
	}
}

// Load reads a YAML file on top of Default. Fields absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Stages == nil {
		cfg.Stages = map[string]map[string]interface{}{}
	}

	return cfg, nil
}

// Validate checks the configuration against the set of known stage names.
func (c *Config) Validate(knownStages []string) error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must be set")
	}

	known := make(map[string]struct{}, len(knownStages))
	for _, name := range knownStages {
		known[name] = struct{}{}
	}

	names := make([]string, 0, len(c.Stages))
	for name := range c.Stages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("unknown stage in config: %s", name)
		}
	}

	return nil
}

// StageParams returns the overrides for one stage merged over defaults.
// Neither input map is modified.
func (c *Config) StageParams(stage string, defaults map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range c.Stages[stage] {
		merged[k] = v
	}
	return merged
}
