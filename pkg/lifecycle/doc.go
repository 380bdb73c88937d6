// Package lifecycle implements the process-wide lifecycle state machine and
// its observer registry.
//
// A process moves through a fixed, directed transition graph:
//
//	Starting ──> Initializing ──> Active ──┐
//	                        └───> Failed ──┼──> Stopping ──> Stopped
//
// Exactly one State holds at any instant. Starting is the only legal initial
// state and Stopped is terminal. Requests for transitions outside the graph
// are rejected without changing state; requesting the current state again is
// a no-op that emits no notifications.
//
// # Observers
//
// Observers subscribe with an interest set of states. On every applied
// transition, each observer whose interest set contains the new state is
// notified, in transition order, on a dedicated delivery goroutine. Delivery
// is fire-and-forget: a slow or panicking observer never blocks the state
// machine or other observers. A new subscriber immediately receives the
// current state if it is in its interest set, so observers registered after
// a transition still learn the latest state.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package lifecycle
