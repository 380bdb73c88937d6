package inittrack

import (
	"sync"

	"github.com/bft-labs/helmsman/pkg/lifecycle"
	"github.com/bft-labs/helmsman/pkg/log"
)

// Outcome is the result of a component's initialization.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "Pending"
	case OutcomeSucceeded:
		return "Succeeded"
	case OutcomeFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Report is a recorded initialization outcome.
type Report struct {
	Outcome Outcome
	Reason  string // failure reason, empty on success
}

// Tracker consumes per-component readiness reports and drives the lifecycle
// machine to Active or Failed. Mutations are serialized through one mutex.
type Tracker struct {
	mu       sync.Mutex
	machine  *lifecycle.Machine
	logger   log.Logger
	required map[string]bool
	reports  map[string]Report
	failedID string // first init-required component that failed
}

// NewTracker creates a tracker seeded with the ids of the init-required
// components. Components absent from requiredIDs may still report; their
// outcomes are informational only.
func NewTracker(machine *lifecycle.Machine, logger log.Logger, requiredIDs []string) *Tracker {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	required := make(map[string]bool, len(requiredIDs))
	for _, id := range requiredIDs {
		required[id] = true
	}
	return &Tracker{
		machine:  machine,
		logger:   logger,
		required: required,
		reports:  make(map[string]Report),
	}
}

// Report records the initialization outcome for componentID and recomputes
// the global decision. The first report per component wins; later reports
// for the same component are logged and ignored. Failure of any required
// component is global and sticky.
func (t *Tracker) Report(componentID string, outcome Outcome, reason string) {
	t.mu.Lock()

	if prev, ok := t.reports[componentID]; ok {
		t.mu.Unlock()
		t.logger.Warn("duplicate init report ignored",
			log.String("component", componentID),
			log.String("recorded", prev.Outcome.String()),
			log.String("ignored", outcome.String()),
		)
		return
	}
	t.reports[componentID] = Report{Outcome: outcome, Reason: reason}

	if !t.required[componentID] {
		t.mu.Unlock()
		t.logger.Debug("informational init report",
			log.String("component", componentID),
			log.String("outcome", outcome.String()),
		)
		return
	}

	if outcome == OutcomeFailed && t.failedID == "" {
		t.failedID = componentID
	}
	failedID := t.failedID
	failedReason := t.reports[failedID].Reason
	complete := t.allRequiredSucceededLocked()
	t.mu.Unlock()

	t.logger.Info("init report",
		log.String("component", componentID),
		log.String("outcome", outcome.String()),
	)

	// The machine rejects requests that arrive after Stopping/Stopped; the
	// outcome stays recorded for diagnostics either way.
	if failedID != "" {
		_ = t.machine.TransitionTo(lifecycle.StateFailed,
			"component "+failedID+" failed: "+failedReason)
		return
	}
	if complete {
		_ = t.machine.TransitionTo(lifecycle.StateActive, "all required components initialized")
	}
}

// allRequiredSucceededLocked reports whether every required component has a
// recorded Succeeded outcome. Callers must hold t.mu.
func (t *Tracker) allRequiredSucceededLocked() bool {
	for id := range t.required {
		if t.reports[id].Outcome != OutcomeSucceeded {
			return false
		}
	}
	return true
}

// Outcome returns the recorded report for componentID.
func (t *Tracker) Outcome(componentID string) (Report, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.reports[componentID]
	return r, ok
}

// FailureReason returns the id and reason of the first required component
// that reported failure, if any.
func (t *Tracker) FailureReason() (componentID, reason string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failedID == "" {
		return "", "", false
	}
	return t.failedID, t.reports[t.failedID].Reason, true
}

// Pending returns the ids of required components that have not reported yet.
func (t *Tracker) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var pending []string
	for id := range t.required {
		if _, ok := t.reports[id]; !ok {
			pending = append(pending, id)
		}
	}
	return pending
}
