// Package inittrack decides when the process may become Active.
//
// A Tracker is seeded with the ids of every init-required component. Each
// component reports its initialization outcome exactly once; duplicate
// reports are accepted but never change an already-recorded outcome. After
// each report the tracker recomputes the global decision:
//
//   - any required component Failed  => request StateFailed (sticky)
//   - all required components Succeeded => request StateActive
//
// Components that are not init-required are excluded from the completion
// count; their reports are recorded for diagnostics only. There is no
// timeout on initialization: a required component that never reports blocks
// StateActive forever, by design. Reports arriving after the machine has
// moved on to Stopping or Stopped are recorded but inert.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package inittrack
