// Package gate projects lifecycle transitions, or arbitrary external binary
// signals, onto an open/closed gate controlling a demand-driven element
// stream.
//
// A Gate wraps a pull-based Source and only forwards demand while open:
// callers of Next park on a reopen signal while the gate is closed, so the
// upstream produces nothing in the meantime. Nothing is buffered and nothing
// is dropped; memory stays bounded no matter how long the gate stays shut,
// because backpressure propagates upstream instead of accumulating here.
//
// Repeated Enable signals while open, and repeated Disable while closed, are
// no-ops. Unknown trigger values are ignored.
//
// BindMachine couples a gate to the lifecycle machine: it snapshots the
// current state synchronously, applies it through the state mapping, and
// only then subscribes to live updates, so no transition can be missed or
// double-applied relative to the snapshot.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package gate
