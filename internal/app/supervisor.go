// Package app wires the lifecycle machine, the initialization tracker and
// the shutdown coordinator into a process supervisor.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/helmsman/internal/domain"
	"github.com/bft-labs/helmsman/internal/ports"
	"github.com/bft-labs/helmsman/pkg/inittrack"
	"github.com/bft-labs/helmsman/pkg/lifecycle"
	"github.com/bft-labs/helmsman/pkg/shutdown"
)

// Supervisor owns the coordination core for one process: it launches
// components, feeds their init reports into the tracker, and tears the tree
// down through the shutdown coordinator. Lifecycle state is rebuilt fresh on
// every process start; a Supervisor is single-use.
type Supervisor struct {
	machine    *lifecycle.Machine
	tracker    *inittrack.Tracker
	coord      *shutdown.Coordinator
	components []ports.Component
	logger     ports.Logger

	mu      sync.Mutex
	started bool
}

// NewSupervisor builds the coordination core over the given components.
// children declares, per component id, the components it must stop before
// terminating itself; every component may be claimed by at most one parent
// and the relation must form a forest. Unclaimed components hang off a
// synthetic root bounded by stopTimeout.
func NewSupervisor(components []ports.Component, children map[string][]string, stopTimeout time.Duration, logger ports.Logger) (*Supervisor, error) {
	machine := lifecycle.NewMachine(logger)

	var required []string
	for _, c := range components {
		if c.InitRequired() {
			required = append(required, c.ID())
		}
	}
	tracker := inittrack.NewTracker(machine, logger, required)

	root, err := buildTree(components, children, stopTimeout, logger)
	if err != nil {
		return nil, err
	}

	return &Supervisor{
		machine:    machine,
		tracker:    tracker,
		coord:      shutdown.NewCoordinator(root, machine, logger),
		components: components,
		logger:     logger,
	}, nil
}

// Start moves the machine to Initializing and launches every component in
// its own goroutine. Each component's Start result becomes its init report:
// nil is Succeeded, an error is Failed with the error text as reason. With
// no init-required components the process becomes Active right away.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	s.started = true
	s.mu.Unlock()

	if err := s.machine.TransitionTo(lifecycle.StateInitializing, "component startup"); err != nil {
		return err
	}

	anyRequired := false
	for _, c := range s.components {
		if c.InitRequired() {
			anyRequired = true
		}
		go func(c ports.Component) {
			if err := c.Start(ctx); err != nil {
				s.logger.Error("component initialization failed",
					ports.String("component", c.ID()),
					ports.Err(err),
				)
				s.tracker.Report(c.ID(), inittrack.OutcomeFailed, err.Error())
				return
			}
			s.tracker.Report(c.ID(), inittrack.OutcomeSucceeded, "")
		}(c)
	}

	if !anyRequired {
		_ = s.machine.TransitionTo(lifecycle.StateActive, "no init-required components")
	}

	return nil
}

// Stop runs the graceful shutdown protocol and returns once the whole tree
// has terminated. Safe to call repeatedly and concurrently.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return domain.ErrNotRunning
	}

	s.coord.InitiateGracefulStop(ctx)
	return nil
}

// Machine exposes the lifecycle machine for observers and gates.
func (s *Supervisor) Machine() *lifecycle.Machine { return s.machine }

// Tracker exposes the initialization tracker for external init reports.
func (s *Supervisor) Tracker() *inittrack.Tracker { return s.tracker }

// buildTree turns the declared child relations into a shutdown node tree
// rooted at a synthetic grouping node.
func buildTree(components []ports.Component, children map[string][]string, stopTimeout time.Duration, logger ports.Logger) (*shutdown.Node, error) {
	byID := make(map[string]ports.Component, len(components))
	for _, c := range components {
		if _, ok := byID[c.ID()]; ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateComponent, c.ID())
		}
		byID[c.ID()] = c
	}

	// Every component may be stopped by at most one parent.
	claimedBy := make(map[string]string)
	for parent, kids := range children {
		if _, ok := byID[parent]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownComponent, parent)
		}
		for _, kid := range kids {
			if _, ok := byID[kid]; !ok {
				return nil, fmt.Errorf("%w: %s (child of %s)", domain.ErrUnknownComponent, kid, parent)
			}
			if other, ok := claimedBy[kid]; ok {
				return nil, fmt.Errorf("%w: %s claimed by both %s and %s",
					domain.ErrDuplicateComponent, kid, other, parent)
			}
			claimedBy[kid] = parent
		}
	}

	nodes := make(map[string]*shutdown.Node, len(components))
	var build func(id string, trail map[string]bool) (*shutdown.Node, error)
	build = func(id string, trail map[string]bool) (*shutdown.Node, error) {
		if n, ok := nodes[id]; ok {
			return n, nil
		}
		if trail[id] {
			return nil, fmt.Errorf("%w: via %s", domain.ErrComponentCycle, id)
		}
		trail[id] = true
		defer delete(trail, id)

		var kidNodes []*shutdown.Node
		for _, kid := range children[id] {
			n, err := build(kid, trail)
			if err != nil {
				return nil, err
			}
			kidNodes = append(kidNodes, n)
		}

		c := byID[id]
		n := shutdown.NewNode(c, c.StopTimeout(), logger, kidNodes...)
		nodes[id] = n
		return n, nil
	}

	var rootNodes []*shutdown.Node
	for _, c := range components {
		if _, claimed := claimedBy[c.ID()]; claimed {
			continue
		}
		n, err := build(c.ID(), make(map[string]bool))
		if err != nil {
			return nil, err
		}
		rootNodes = append(rootNodes, n)
	}

	// Components that are claimed but unreachable from any root form a cycle
	// among themselves.
	if len(nodes) != len(components) {
		return nil, domain.ErrComponentCycle
	}

	return shutdown.NewNode(nil, stopTimeout, logger, rootNodes...), nil
}
