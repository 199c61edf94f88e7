// Package config provides YAML-based configuration for the NeuroScan
// client tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure.
type AppConfig struct {
	// Service holds the remote inference service settings.
	Service ServiceConfig `yaml:"service"`

	// History holds the local scan history settings.
	History HistoryConfig `yaml:"history"`

	// Catalog holds the classification catalog cache settings.
	Catalog CatalogConfig `yaml:"catalog"`

	// Logging holds log output settings.
	Logging LoggingConfig `yaml:"logging"`
}

// ServiceConfig describes how to reach the inference service.
type ServiceConfig struct {
	Origin         string `yaml:"origin"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// HistoryConfig selects and locates the history backend.
type HistoryConfig struct {
	Backend string `yaml:"backend"` // "file" or "duckdb"
	Path    string `yaml:"path"`
}

// CatalogConfig locates the classification catalog cache.
type CatalogConfig struct {
	CachePath  string `yaml:"cachePath"`
	TTLMinutes int    `yaml:"ttlMinutes"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration rooted at dataDir.
func DefaultConfig(dataDir string) *AppConfig {
	return &AppConfig{
		Service: ServiceConfig{
			Origin:         "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		History: HistoryConfig{
			Backend: "file",
			Path:    filepath.Join(dataDir, "scan_history.json"),
		},
		Catalog: CatalogConfig{
			CachePath:  filepath.Join(dataDir, "classifications.cache"),
			TTLMinutes: 24 * 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is
// created with defaults so the first run leaves an editable config
// behind.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig(filepath.Dir(configPath))
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig(filepath.Dir(configPath))
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.resolvePaths(filepath.Dir(configPath))

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *AppConfig) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	content := append([]byte("# NeuroScan client configuration\n# Auto-generated on first run\n\n"), output...)
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override
// config values.
func (c *AppConfig) applyEnvironmentOverrides() {
	if origin := os.Getenv("NEUROSCAN_ORIGIN"); origin != "" {
		c.Service.Origin = origin
	}
	if timeout := os.Getenv("NEUROSCAN_TIMEOUT_SECONDS"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.Service.TimeoutSeconds = t
		}
	}
	if path := os.Getenv("NEUROSCAN_HISTORY_PATH"); path != "" {
		c.History.Path = path
	}
	if level := os.Getenv("NEUROSCAN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// resolvePaths converts relative paths to absolute based on the config
// file location.
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.History.Path) {
		c.History.Path = filepath.Join(configDir, c.History.Path)
	}
	if !filepath.IsAbs(c.Catalog.CachePath) {
		c.Catalog.CachePath = filepath.Join(configDir, c.Catalog.CachePath)
	}
}
