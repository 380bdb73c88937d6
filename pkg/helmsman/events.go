package helmsman

import "github.com/bft-labs/helmsman/pkg/lifecycle"

// State re-exports the lifecycle state for facade users.
type State = lifecycle.State

// Lifecycle states, re-exported for convenient access.
const (
	StateStarting     = lifecycle.StateStarting
	StateInitializing = lifecycle.StateInitializing
	StateActive       = lifecycle.StateActive
	StateFailed       = lifecycle.StateFailed
	StateStopping     = lifecycle.StateStopping
	StateStopped      = lifecycle.StateStopped
)

// StateChangeEvent notifies that the process reached a new lifecycle state.
type StateChangeEvent struct {
	State State
}

// EventHandler receives Helmsman events. Handlers are invoked on a delivery
// goroutine, in transition order, and should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
}

// BaseEventHandler provides no-op defaults; embed it to implement only the
// events you care about.
type BaseEventHandler struct{}

// OnStateChange does nothing.
func (BaseEventHandler) OnStateChange(event StateChangeEvent) {}
