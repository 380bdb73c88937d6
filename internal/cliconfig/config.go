package cliconfig

import (
	"fmt"
	"time"
)

// DefaultStopTimeout bounds the polite phase of shutdown for components
// that do not set their own timeout.
const DefaultStopTimeout = 30 * time.Second

// ProcessConfig describes one supervised child process.
type ProcessConfig struct {
	ID            string
	Command       string
	Args          []string
	InitRequired  bool
	StopTimeout   time.Duration
	Children      []string
	ForwardOutput bool
}

// Config holds CLI configuration for helmsman.
type Config struct {
	StopTimeout time.Duration
	LogLevel    string
	WatchConfig bool

	Processes []ProcessConfig
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		StopTimeout: DefaultStopTimeout,
		LogLevel:    "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.StopTimeout <= 0 {
		return fmt.Errorf("stop timeout must be positive")
	}

	if len(c.Processes) == 0 {
		return fmt.Errorf("at least one process is required")
	}

	seen := make(map[string]bool, len(c.Processes))
	for i := range c.Processes {
		p := &c.Processes[i]
		if p.ID == "" {
			return fmt.Errorf("process %d: id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("process %q: duplicate id", p.ID)
		}
		seen[p.ID] = true
		if p.Command == "" {
			return fmt.Errorf("process %q: command is required", p.ID)
		}
		if p.StopTimeout <= 0 {
			p.StopTimeout = c.StopTimeout
		}
	}

	for i := range c.Processes {
		for _, child := range c.Processes[i].Children {
			if !seen[child] {
				return fmt.Errorf("process %q: unknown child %q", c.Processes[i].ID, child)
			}
		}
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
