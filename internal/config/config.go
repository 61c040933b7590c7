// Package config provides configuration loading and structs for the Tonari server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool         `yaml:"debug"`
	Server      ServerConfig `yaml:"server"`
	Search      SearchConfig `yaml:"search"`
	Seed        SeedConfig   `yaml:"seed"`
	Collections []string     `yaml:"collections"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SearchConfig holds search limits and scoring-parallelism settings.
type SearchConfig struct {
	DefaultK          int `yaml:"default_k"`
	MaxK              int `yaml:"max_k"`
	Workers           int `yaml:"workers"`
	ParallelThreshold int `yaml:"parallel_threshold"`
}

// SeedConfig holds seed-directory watch settings.
type SeedConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch seed directories recursively;
// defaults to true when unset.
func (s *SeedConfig) RecursiveOrDefault() bool {
	if s.Recursive != nil {
		return *s.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands seed paths, and
// applies defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for i := range cfg.Seed.Directories {
		cfg.Seed.Directories[i] = expandPath(cfg.Seed.Directories[i], configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
