package helmsman

import (
	"context"

	"github.com/bft-labs/helmsman/pkg/lifecycle"
)

// PluginConfig is handed to every plugin at initialization time.
type PluginConfig struct {
	// Logger is the instance logger.
	Logger Logger

	// Machine is the lifecycle machine; plugins may subscribe to it.
	Machine *lifecycle.Machine

	// RequestStop initiates a graceful stop of the whole process without
	// blocking the caller. Safe to call more than once.
	RequestStop func()
}

// Plugin extends a Helmsman instance. Plugins are initialized in
// registration order when Start is called and shut down in reverse order
// during Stop.
type Plugin interface {
	// Name returns the plugin identifier.
	Name() string

	// Initialize sets the plugin up. An error aborts Start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin.
	Shutdown(ctx context.Context) error
}
