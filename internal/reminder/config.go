// Package reminder watches for approaching and overdue tasks.
package reminder

import "time"

// Config defines the reminder loop configuration.
type Config struct {
	// Interval is how often the loop scans for due tasks.
	Interval time.Duration `yaml:"interval"`
	// Window is how far ahead of the due instant a task counts as due soon.
	Window time.Duration `yaml:"window"`
}

// DefaultConfig returns the default reminder configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval: time.Minute,
		Window:   time.Hour,
	}
}
