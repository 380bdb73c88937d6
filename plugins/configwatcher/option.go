package configwatcher

import "github.com/bft-labs/helmsman/pkg/helmsman"

// WithConfigWatcher returns a helmsman Option that enables config file
// watching. When the watched file changes, the plugin requests a graceful
// stop so the process can be restarted with the new configuration.
//
// Usage:
//
//	h, err := helmsman.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        ConfigPath:    "/etc/helmsman/config.toml",
//	        DebounceDelay: 500 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) helmsman.Option {
	plugin := New(cfg)
	return helmsman.WithPlugin(plugin)
}
