// Package config handles pdfchunk run configuration loading.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Split SplitConfig `yaml:"split"`
	Image ImageConfig `yaml:"image"`
}

// SplitConfig holds chunk planning settings.
type SplitConfig struct {
	// MaxChunkBytes is the per-chunk size budget in bytes.
	MaxChunkBytes int64 `yaml:"max_chunk_bytes"`

	// OutputDir receives the chunk files. Empty means the input
	// file's own directory.
	OutputDir string `yaml:"output_dir"`
}

// ImageConfig holds recompression settings for the fallback path.
type ImageConfig struct {
	Quality      int `yaml:"quality"`
	MaxDimension int `yaml:"max_dimension"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Split: SplitConfig{
			MaxChunkBytes: 4 << 20,
		},
		Image: ImageConfig{
			Quality:      75,
			MaxDimension: 1500,
		},
	}
}

// Load loads configuration from a file, filling unset fields from the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads config from path, or returns default if the path
// is empty or the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}
