package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	// UserRoot is the per-user repository root, ~/.lode by default.
	UserRoot string `envconfig:"USER_ROOT" yaml:"user_root" toml:"user_root"`
	// SystemRoot is the machine-wide repository root.
	SystemRoot string `envconfig:"SYSTEM_ROOT" yaml:"system_root" toml:"system_root"`
	// SearchPaths are extra ad-hoc package scan directories, highest
	// precedence in the discovery order. Not persisted.
	SearchPaths []string `envconfig:"SEARCH_PATHS" yaml:"search_paths" toml:"search_paths"`
	// HashIgnore holds extra glob patterns excluded from the content
	// fingerprint, in addition to the fixed metadata directory set.
	HashIgnore []string `envconfig:"HASH_IGNORE" yaml:"hash_ignore" toml:"hash_ignore"`

	Logging LogConfig `yaml:"logging" toml:"logging"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		UserRoot:   filepath.Join(home, ".lode"),
		SystemRoot: "/var/lib/lode",
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Load assembles the effective configuration from defaults, the optional
// config file and the environment.
func Load() (*Config, error) {
	cfg := Default()

	// The user root itself may be relocated via the environment before the
	// config file is looked up.
	if root := os.Getenv("LODE_USER_ROOT"); root != "" {
		cfg.UserRoot = root
	}

	if err := applyFile(cfg); err != nil {
		return nil, err
	}
	if err := envconfig.Process("lode", cfg); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}
	// envconfig prefixes nested struct fields with the field name, which
	// would make these LODE_LOGGING_*; process the logging section
	// separately so LODE_LOG_LEVEL and LODE_LOG_DEV apply as named.
	if err := envconfig.Process("lode", &cfg.Logging); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration or falls back to defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// applyFile overlays config.yaml or config.toml from the user root, if
// present. A missing file is not an error.
func applyFile(cfg *Config) error {
	yamlPath := filepath.Join(cfg.UserRoot, "config.yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", yamlPath, err)
		}
		return nil
	}

	tomlPath := filepath.Join(cfg.UserRoot, "config.toml")
	if data, err := os.ReadFile(tomlPath); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", tomlPath, err)
		}
	}
	return nil
}
