package gate

import "github.com/bft-labs/helmsman/pkg/lifecycle"

// StateMapping maps lifecycle states to gate triggers. States absent from
// the mapping leave the gate untouched.
type StateMapping map[lifecycle.State]Trigger

// DefaultStateMapping opens the gate on Active and closes it on Stopping.
func DefaultStateMapping() StateMapping {
	return StateMapping{
		lifecycle.StateActive:   TriggerEnable,
		lifecycle.StateStopping: TriggerDisable,
	}
}

// BindMachine couples the gate to a lifecycle machine. It synchronously
// snapshots the current state and applies it through the mapping before
// subscribing to live updates, so the open/closed bit is defined from the
// moment this returns and no transition in between is lost (a transition
// delivered twice across the handshake is absorbed by trigger idempotence).
// A nil mapping selects DefaultStateMapping. The returned subscriber id can
// be passed to Machine.Unsubscribe to detach the gate.
func (g *Gate[T]) BindMachine(m *lifecycle.Machine, mapping StateMapping) string {
	if mapping == nil {
		mapping = DefaultStateMapping()
	}

	if t, ok := mapping[m.Current()]; ok {
		g.Signal(t)
	}

	states := make([]lifecycle.State, 0, len(mapping))
	for s := range mapping {
		states = append(states, s)
	}
	return m.Subscribe("", lifecycle.ObserverFunc(func(s lifecycle.State) {
		if t, ok := mapping[s]; ok {
			g.Signal(t)
		}
	}), states...)
}
