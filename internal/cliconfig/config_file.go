package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileProcess mirrors ProcessConfig but uses strings for durations to make
// TOML friendly.
type FileProcess struct {
	ID            string   `toml:"id"`
	Command       string   `toml:"command"`
	Args          []string `toml:"args"`
	InitRequired  *bool    `toml:"init_required"`
	StopTimeout   string   `toml:"stop_timeout"`
	Children      []string `toml:"children"`
	ForwardOutput *bool    `toml:"forward_output"`
}

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	StopTimeout string        `toml:"stop_timeout"`
	LogLevel    string        `toml:"log_level"`
	WatchConfig *bool         `toml:"watch_config"`
	Processes   []FileProcess `toml:"process"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.helmsman/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".helmsman", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map). Process
// definitions come from the file only and always replace the current list.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	if err := s.setDuration("stop-timeout", fc.StopTimeout, &cfg.StopTimeout); err != nil {
		return err
	}

	if len(fc.Processes) > 0 {
		procs := make([]ProcessConfig, 0, len(fc.Processes))
		for _, fp := range fc.Processes {
			p := ProcessConfig{
				ID:       fp.ID,
				Command:  fp.Command,
				Args:     fp.Args,
				Children: fp.Children,
			}
			if fp.InitRequired != nil {
				p.InitRequired = *fp.InitRequired
			}
			if fp.ForwardOutput != nil {
				p.ForwardOutput = *fp.ForwardOutput
			}
			if fp.StopTimeout != "" {
				d, err := time.ParseDuration(fp.StopTimeout)
				if err != nil {
					return fmt.Errorf("parse process %q stop_timeout: %w", fp.ID, err)
				}
				p.StopTimeout = d
			}
			procs = append(procs, p)
		}
		cfg.Processes = procs
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
