// Package config loads initiative settings from a YAML file and the
// environment. Precedence, lowest first: defaults, file, INITIATIVE_* env
// vars, command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"initiative/pkg/naming"
)

// EnvPrefix prefixes every environment override, e.g. INITIATIVE_DATA_DIR.
const EnvPrefix = "INITIATIVE"

// Config holds the tracker configuration.
type Config struct {
	DataDir  string `yaml:"data_dir" envconfig:"DATA_DIR"`
	Ordering string `yaml:"ordering" envconfig:"ORDERING"`
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	// Journal is resolved against DataDir when relative.
	Journal string `yaml:"journal" envconfig:"JOURNAL"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	dataDir := "initiative-data"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "initiative")
	}

	return &Config{
		DataDir:  dataDir,
		Ordering: naming.OrderingNumeric.String(),
		LogLevel: "info",
		Journal:  "journal.jsonl",
	}
}

// DefaultPath returns the config file location used when --config is not given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "initiative", "config.yaml")
}

// Load reads config from path, applying defaults for missing values.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadWithEnv loads the file at path and applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	return cfg, nil
}

// Save writes config to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data_dir must not be empty")
	}
	if strings.TrimSpace(c.Journal) == "" {
		return errors.New("journal must not be empty")
	}
	if _, err := c.NameOrdering(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// NameOrdering returns the configured resolver ordering.
func (c *Config) NameOrdering() (naming.Ordering, error) {
	return naming.ParseOrdering(c.Ordering)
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// JournalPath returns the absolute journal location.
func (c *Config) JournalPath() string {
	if filepath.IsAbs(c.Journal) {
		return c.Journal
	}
	return filepath.Join(c.DataDir, c.Journal)
}

// StorePath returns the BadgerDB directory inside DataDir.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "db")
}
