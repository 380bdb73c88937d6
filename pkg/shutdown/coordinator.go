package shutdown

import (
	"context"
	"sync"

	"github.com/bft-labs/helmsman/pkg/lifecycle"
	"github.com/bft-labs/helmsman/pkg/log"
)

// Coordinator owns the root of the shutdown tree. It is the single entry
// point for stopping the whole process and drives the lifecycle machine
// through its terminal transitions.
type Coordinator struct {
	root    *Node
	machine *lifecycle.Machine
	logger  log.Logger

	once sync.Once
	done chan struct{}
}

// NewCoordinator creates a coordinator over the given root node.
func NewCoordinator(root *Node, machine *lifecycle.Machine, logger log.Logger) *Coordinator {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Coordinator{
		root:    root,
		machine: machine,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// InitiateGracefulStop runs the shutdown protocol from the root. It is
// idempotent: concurrent and repeated calls share a single attempt, and all
// of them return once the tree has terminated. Once initiated, shutdown
// cannot be aborted; ctx only scopes polite signal delivery.
//
// The Stopping and Stopped transitions are requested on the machine as the
// protocol begins and completes. Requests rejected by the graph (for
// example a stop arriving while still Initializing) are logged by the
// machine and otherwise ignored: the component tree is torn down regardless.
func (c *Coordinator) InitiateGracefulStop(ctx context.Context) {
	c.once.Do(func() {
		c.logger.Info("graceful stop initiated", log.String("root", c.root.ID()))
		_ = c.machine.TransitionTo(lifecycle.StateStopping, "graceful stop initiated")

		_ = c.root.Stop(ctx)

		_ = c.machine.TransitionTo(lifecycle.StateStopped, "shutdown complete")
		c.logger.Info("graceful stop complete")
		close(c.done)
	})
	<-c.done
}

// Done is closed once a graceful stop has fully completed.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}
