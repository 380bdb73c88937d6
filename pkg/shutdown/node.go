package shutdown

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/helmsman/pkg/log"
)

// DefaultStopTimeout is used when a component advertises no stop timeout.
const DefaultStopTimeout = 30 * time.Second

// Target is a stoppable unit as seen by the coordinator. Termination is
// detected through the runtime's death notification (Done), never through an
// application-level reply to Stop.
type Target interface {
	// ID identifies the unit.
	ID() string

	// Stop delivers the polite stop signal. It may return before the unit
	// has terminated; an error means the unit mishandled the signal and
	// will be escalated.
	Stop(ctx context.Context) error

	// Kill delivers the forceful, non-interceptable termination signal.
	Kill()

	// Done is closed when the unit has terminated.
	Done() <-chan struct{}
}

// Phase is the per-node progress of one shutdown attempt.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseAwaitingChildren
	PhaseEscalating
	PhaseTerminated
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseAwaitingChildren:
		return "AwaitingChildren"
	case PhaseEscalating:
		return "Escalating"
	case PhaseTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Node is one component in the shutdown tree together with the children it
// must stop before terminating itself. A nil target makes a pure grouping
// node (used for the synthetic root).
type Node struct {
	target   Target
	timeout  time.Duration
	children []*Node
	logger   log.Logger

	mu    sync.Mutex
	phase Phase

	once sync.Once
	done chan struct{}
}

// NewNode wraps target in a shutdown node. The stop timeout bounds the
// polite phase at timeout/2; children are stopped before the target itself.
func NewNode(target Target, stopTimeout time.Duration, logger log.Logger, children ...*Node) *Node {
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Node{
		target:   target,
		timeout:  stopTimeout,
		children: children,
		logger:   logger,
		phase:    PhaseNotStarted,
		done:     make(chan struct{}),
	}
}

// ID returns the target id, or "root" for a grouping node.
func (n *Node) ID() string {
	if n.target == nil {
		return "root"
	}
	return n.target.ID()
}

// Phase returns the node's current shutdown phase.
func (n *Node) Phase() Phase {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.phase
}

// Done is closed once the node and its entire subtree have terminated.
func (n *Node) Done() <-chan struct{} {
	return n.done
}

// Stop runs the two-phase protocol. It is idempotent: concurrent and
// repeated calls share a single attempt. The context only scopes polite
// signal delivery; the protocol itself is not cancellable. Stop returns
// after the whole subtree, target included, has terminated.
func (n *Node) Stop(ctx context.Context) error {
	n.once.Do(func() { n.run(ctx) })
	<-n.done
	return nil
}

// Kill forcefully terminates the whole subtree, children first.
func (n *Node) Kill() {
	for _, c := range n.children {
		c.Kill()
	}
	if n.target != nil {
		n.target.Kill()
	}
}

func (n *Node) run(ctx context.Context) {
	defer close(n.done)

	n.setPhase(PhaseAwaitingChildren)

	// Phase one: polite stop to every child simultaneously. A child that
	// errors on the polite signal is left for escalation, same as a hang.
	for _, c := range n.children {
		go func(c *Node) {
			if err := c.Stop(ctx); err != nil {
				n.logger.Warn("child mishandled polite stop",
					log.String("node", n.ID()),
					log.String("child", c.ID()),
					log.Err(err),
				)
			}
		}(c)
	}

	if remaining := awaitChildren(n.children, n.timeout/2); len(remaining) > 0 {
		// Phase two: forceful kill of the stragglers only. Forceful
		// termination is assumed reliable, so this wait has no bound.
		n.setPhase(PhaseEscalating)
		for _, c := range remaining {
			n.logger.Warn("escalating to forceful termination",
				log.String("node", n.ID()),
				log.String("child", c.ID()),
				log.Duration("waited", n.timeout/2),
			)
			c.Kill()
		}
		for _, c := range remaining {
			<-c.Done()
		}
	}

	n.setPhase(PhaseTerminated)
	n.stopSelf(ctx)
}

// stopSelf terminates the node's own target after all children are gone. If
// the target ignores the polite stop, the parent's escalation kills it and
// its death notification releases this wait.
func (n *Node) stopSelf(ctx context.Context) {
	if n.target == nil {
		return
	}
	if err := n.target.Stop(ctx); err != nil {
		n.logger.Warn("target mishandled polite stop, killing",
			log.String("node", n.ID()),
			log.Err(err),
		)
		n.target.Kill()
	}
	<-n.target.Done()
}

func (n *Node) setPhase(p Phase) {
	n.mu.Lock()
	n.phase = p
	n.mu.Unlock()
}

// awaitChildren waits up to bound for every child's death notification and
// returns the ones still alive when the bound expires.
func awaitChildren(children []*Node, bound time.Duration) []*Node {
	if len(children) == 0 {
		return nil
	}

	deadline, cancel := context.WithTimeout(context.Background(), bound)
	defer cancel()

	for _, c := range children {
		select {
		case <-c.Done():
		case <-deadline.Done():
		}
	}

	var remaining []*Node
	for _, c := range children {
		select {
		case <-c.Done():
		default:
			remaining = append(remaining, c)
		}
	}
	return remaining
}
