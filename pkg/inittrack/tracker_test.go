package inittrack

import (
	"testing"

	"github.com/bft-labs/helmsman/pkg/lifecycle"
	"github.com/bft-labs/helmsman/pkg/log"
)

func newInitializingMachine(t *testing.T) *lifecycle.Machine {
	t.Helper()
	m := lifecycle.NewMachine(log.NewNoopLogger())
	if err := m.TransitionTo(lifecycle.StateInitializing, "test setup"); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestTracker_AllRequiredSucceeded(t *testing.T) {
	m := newInitializingMachine(t)
	tr := NewTracker(m, log.NewNoopLogger(), []string{"a", "b"})

	tr.Report("a", OutcomeSucceeded, "")
	if m.Current() != lifecycle.StateInitializing {
		t.Errorf("state = %v after partial init, want Initializing", m.Current())
	}

	tr.Report("b", OutcomeSucceeded, "")
	if m.Current() != lifecycle.StateActive {
		t.Errorf("state = %v after full init, want Active", m.Current())
	}
}

func TestTracker_RequiredFailureIsGlobalAndSticky(t *testing.T) {
	tests := []struct {
		name    string
		reports []struct {
			id      string
			outcome Outcome
		}
	}{
		{"failure first", []struct {
			id      string
			outcome Outcome
		}{{"b", OutcomeFailed}, {"a", OutcomeSucceeded}}},
		{"failure last", []struct {
			id      string
			outcome Outcome
		}{{"a", OutcomeSucceeded}, {"b", OutcomeFailed}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newInitializingMachine(t)
			tr := NewTracker(m, log.NewNoopLogger(), []string{"a", "b"})

			for _, r := range tt.reports {
				tr.Report(r.id, r.outcome, "boom")
			}

			if m.Current() != lifecycle.StateFailed {
				t.Errorf("state = %v, want Failed", m.Current())
			}

			id, reason, ok := tr.FailureReason()
			if !ok || id != "b" || reason != "boom" {
				t.Errorf("FailureReason() = (%q, %q, %v), want (b, boom, true)", id, reason, ok)
			}
		})
	}
}

func TestTracker_NonRequiredComponentIsInformational(t *testing.T) {
	m := newInitializingMachine(t)
	tr := NewTracker(m, log.NewNoopLogger(), []string{"a"})

	// Failure of a non-required component must not fail the process.
	tr.Report("c", OutcomeFailed, "optional thing broke")
	if m.Current() != lifecycle.StateInitializing {
		t.Errorf("state = %v after optional failure, want Initializing", m.Current())
	}

	// Its outcome is still recorded for diagnostics.
	if r, ok := tr.Outcome("c"); !ok || r.Outcome != OutcomeFailed {
		t.Errorf("Outcome(c) = (%+v, %v), want recorded failure", r, ok)
	}

	// Completion counts required components only.
	tr.Report("a", OutcomeSucceeded, "")
	if m.Current() != lifecycle.StateActive {
		t.Errorf("state = %v, want Active", m.Current())
	}
}

func TestTracker_DuplicateReportDoesNotChangeOutcome(t *testing.T) {
	m := newInitializingMachine(t)
	tr := NewTracker(m, log.NewNoopLogger(), []string{"a", "b"})

	tr.Report("a", OutcomeSucceeded, "")
	tr.Report("a", OutcomeFailed, "late regret")

	if r, _ := tr.Outcome("a"); r.Outcome != OutcomeSucceeded {
		t.Errorf("Outcome(a) = %v after duplicate, want Succeeded", r.Outcome)
	}
	if m.Current() != lifecycle.StateInitializing {
		t.Errorf("state = %v, want Initializing", m.Current())
	}

	tr.Report("b", OutcomeSucceeded, "")
	if m.Current() != lifecycle.StateActive {
		t.Errorf("state = %v, want Active", m.Current())
	}
}

func TestTracker_FirstFailureWins(t *testing.T) {
	m := newInitializingMachine(t)
	tr := NewTracker(m, log.NewNoopLogger(), []string{"a", "b"})

	tr.Report("a", OutcomeFailed, "first")
	tr.Report("b", OutcomeFailed, "second")

	id, reason, ok := tr.FailureReason()
	if !ok || id != "a" || reason != "first" {
		t.Errorf("FailureReason() = (%q, %q, %v), want (a, first, true)", id, reason, ok)
	}
}

func TestTracker_ReportAfterStoppingIsInert(t *testing.T) {
	m := newInitializingMachine(t)
	tr := NewTracker(m, log.NewNoopLogger(), []string{"a", "b"})

	tr.Report("a", OutcomeSucceeded, "")

	// The process is stopped before initialization completes. The graph has
	// no Initializing->Stopping edge, so drive it through Failed.
	if err := m.TransitionTo(lifecycle.StateFailed, "operator abort"); err != nil {
		t.Fatal(err)
	}
	if err := m.TransitionTo(lifecycle.StateStopping, "stop"); err != nil {
		t.Fatal(err)
	}

	tr.Report("b", OutcomeSucceeded, "")

	if m.Current() != lifecycle.StateStopping {
		t.Errorf("state = %v, want Stopping", m.Current())
	}
	if r, ok := tr.Outcome("b"); !ok || r.Outcome != OutcomeSucceeded {
		t.Errorf("Outcome(b) = (%+v, %v), want recorded success", r, ok)
	}
}

func TestTracker_Pending(t *testing.T) {
	m := newInitializingMachine(t)
	tr := NewTracker(m, log.NewNoopLogger(), []string{"a", "b"})

	tr.Report("a", OutcomeSucceeded, "")

	pending := tr.Pending()
	if len(pending) != 1 || pending[0] != "b" {
		t.Errorf("Pending() = %v, want [b]", pending)
	}
}

func TestTracker_NoRequiredComponents(t *testing.T) {
	m := newInitializingMachine(t)
	tr := NewTracker(m, log.NewNoopLogger(), nil)

	// With nothing required, the first (informational) report must not move
	// the machine; activation with an empty required set is the supervisor's
	// call at startup, not the tracker's.
	tr.Report("c", OutcomeSucceeded, "")
	if m.Current() != lifecycle.StateInitializing {
		t.Errorf("state = %v, want Initializing", m.Current())
	}
}

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomePending, "Pending"},
		{OutcomeSucceeded, "Succeeded"},
		{OutcomeFailed, "Failed"},
		{Outcome(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %s, want %s", tt.outcome, got, tt.want)
		}
	}
}
