package ports

import (
	"context"
	"time"
)

// Component is one independently managed unit of the process. It advertises
// its own initialization requirement and stop timeout at registration time;
// both are consumed by the coordination core, never persisted.
//
// A Component satisfies the shutdown coordinator's Target interface.
type Component interface {
	// ID identifies the component within the process.
	ID() string

	// InitRequired reports whether this component's successful
	// initialization gates the Active state.
	InitRequired() bool

	// StopTimeout is the duration the component advertises to whoever
	// coordinates its shutdown.
	StopTimeout() time.Duration

	// Start launches the component and returns once initialization has
	// completed: nil means Succeeded, an error means Failed with the error
	// text as the recorded reason. Long-running components keep working in
	// the background after Start returns, until stopped.
	Start(ctx context.Context) error

	// Stop delivers the polite stop signal. It may return before the
	// component has terminated.
	Stop(ctx context.Context) error

	// Kill terminates the component forcefully.
	Kill()

	// Done is closed when the component has terminated.
	Done() <-chan struct{}
}
