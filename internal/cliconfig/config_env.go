package cliconfig

import "os"

// Environment variable names recognized by ApplyEnvConfig.
const (
	EnvStopTimeout = "HELMSMAN_STOP_TIMEOUT"
	EnvLogLevel    = "HELMSMAN_LOG_LEVEL"
	EnvWatchConfig = "HELMSMAN_WATCH_CONFIG"
)

// ApplyEnvConfig applies configuration from environment variables to the
// Config struct. It respects flags that have been explicitly set (changed
// map). Process definitions cannot come from the environment.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", os.Getenv(EnvLogLevel), &cfg.LogLevel)
	s.setBoolFromString("watch-config", os.Getenv(EnvWatchConfig), &cfg.WatchConfig)

	if err := s.setDuration("stop-timeout", os.Getenv(EnvStopTimeout), &cfg.StopTimeout); err != nil {
		return err
	}

	return nil
}
