// Package config loads daemon configuration for Questline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds daemon configuration.
type Config struct {
	// Listen is the HTTP API listen address.
	Listen string `yaml:"listen"`
	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path"`
	// Profile is the local user profile name.
	Profile string `yaml:"profile"`
	// Reminder configures the due-task reminder loop.
	Reminder ReminderConfig `yaml:"reminder"`
}

// ReminderConfig configures the reminder loop.
type ReminderConfig struct {
	// Interval is how often the loop scans for due tasks.
	Interval time.Duration `yaml:"interval"`
	// Window is how far ahead of the due instant a task counts as due soon.
	Window time.Duration `yaml:"window"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Listen:  "127.0.0.1:7467",
		DBPath:  filepath.Join(homeDir, ".questline", "questline.db"),
		Profile: "local",
		Reminder: ReminderConfig{
			Interval: time.Minute,
			Window:   time.Hour,
		},
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}
	if c.Profile == "" {
		return fmt.Errorf("profile cannot be empty")
	}
	if c.Reminder.Interval <= 0 {
		return fmt.Errorf("reminder interval must be positive")
	}
	if c.Reminder.Window <= 0 {
		return fmt.Errorf("reminder window must be positive")
	}
	return nil
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFromHome loads configuration from ~/.questline/config.yaml.
func LoadFromHome() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfig(), nil
	}

	path := filepath.Join(home, ".questline", "config.yaml")
	return Load(path)
}
