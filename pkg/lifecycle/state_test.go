package lifecycle

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStarting, "Starting"},
		{StateInitializing, "Initializing"},
		{StateActive, "Active"},
		{StateFailed, "Failed"},
		{StateStopping, "Stopping"},
		{StateStopped, "Stopped"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		got := tt.state.String()
		if got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestState_CanTransitionTo(t *testing.T) {
	legal := []struct {
		from State
		to   State
	}{
		{StateStarting, StateInitializing},
		{StateInitializing, StateActive},
		{StateInitializing, StateFailed},
		{StateActive, StateStopping},
		{StateFailed, StateStopping},
		{StateStopping, StateStopped},
	}

	all := []State{
		StateStarting, StateInitializing, StateActive,
		StateFailed, StateStopping, StateStopped,
	}

	isLegal := func(from, to State) bool {
		for _, e := range legal {
			if e.from == from && e.to == to {
				return true
			}
		}
		return false
	}

	for _, from := range all {
		for _, to := range all {
			got := from.CanTransitionTo(to)
			want := isLegal(from, to)
			if got != want {
				t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestState_Terminal(t *testing.T) {
	for _, s := range []State{StateStarting, StateInitializing, StateActive, StateFailed, StateStopping} {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
	if !StateStopped.Terminal() {
		t.Error("StateStopped.Terminal() = false, want true")
	}
}
