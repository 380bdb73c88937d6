package domain

import "time"

// ComponentSpec describes one manageable unit of the process as declared in
// configuration: its identity, whether its successful initialization gates
// the Active state, the stop timeout it advertises to whoever coordinates
// its shutdown, and the components it must stop before terminating itself.
// Specs are rebuilt from configuration on every process start; nothing about
// them is persisted.
type ComponentSpec struct {
	ID           string
	InitRequired bool
	StopTimeout  time.Duration
	Children     []string
}
