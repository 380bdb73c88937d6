package helmsman

import (
	"github.com/bft-labs/helmsman/internal/ports"
	"github.com/bft-labs/helmsman/pkg/log"
)

// Logger is the interface for structured logging.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// Component is a manageable unit of the process. See the ports package for
// the full contract; implementations advertise their own init requirement
// and stop timeout.
type Component = ports.Component

// Option configures optional behavior of Helmsman.
type Option func(*options)

// options holds the optional configuration for a Helmsman instance.
type options struct {
	logger       ports.Logger
	eventHandler EventHandler
	plugins      []Plugin
	components   []ports.Component
	children     map[string][]string
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger:   log.NewNoopLogger(),
		children: make(map[string][]string),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for lifecycle events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithComponent registers a component, optionally declaring the ids of the
// components it must stop before terminating itself. Every component may be
// claimed as a child by at most one parent; unclaimed components are stopped
// directly by the root.
func WithComponent(c Component, children ...string) Option {
	return func(o *options) {
		o.components = append(o.components, c)
		if len(children) > 0 {
			o.children[c.ID()] = append(o.children[c.ID()], children...)
		}
	}
}

// WithPlugin registers a plugin to be initialized when Helmsman starts.
// Plugins are initialized in registration order and shutdown in reverse order.
// For built-in plugins, prefer their specific options such as
// configwatcher.WithConfigWatcher or loadgate.WithLoadGate.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
