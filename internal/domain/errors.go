package domain

import "errors"

// Domain errors represent error conditions in the helmsman domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("helmsman: already running")

	// ErrNotRunning is returned when Stop() is called before Start().
	ErrNotRunning = errors.New("helmsman: not running")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("helmsman: invalid configuration")

	// ErrUnknownComponent is returned when a child relation names a
	// component that was never registered.
	ErrUnknownComponent = errors.New("helmsman: unknown component")

	// ErrDuplicateComponent is returned when two components share an id, or
	// a component is claimed as a child by more than one parent.
	ErrDuplicateComponent = errors.New("helmsman: duplicate component")

	// ErrComponentCycle is returned when the declared child relations do
	// not form a tree.
	ErrComponentCycle = errors.New("helmsman: component dependency cycle")
)
