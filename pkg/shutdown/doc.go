// Package shutdown implements a bounded-time, escalating termination
// protocol over a tree of components.
//
// Each component is wrapped in a Node. Stopping a node politely stops all of
// its children in parallel, waits up to half the node's advertised stop
// timeout for their death notifications, forcefully kills the stragglers,
// waits for the kill confirmations (forceful termination is assumed reliable
// at the runtime level, so this second wait is unbounded), and only then
// terminates the node's own component. A node with no children terminates
// itself immediately on receiving the polite stop.
//
// The two-phase polite-then-forceful protocol bounds worst-case shutdown
// latency to roughly the advertised stop timeout per level while giving
// well-behaved components a chance to flush and clean up. Components that
// error while handling the polite stop are escalated exactly like ones that
// time out.
//
// The Coordinator drives the root node from a single InitiateGracefulStop
// entry point and walks the lifecycle machine through Stopping and Stopped.
// Shutdown, once initiated, is idempotent and not cancellable.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package shutdown
