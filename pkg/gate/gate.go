package gate

import (
	"context"
	"sync"

	"github.com/bft-labs/helmsman/pkg/log"
)

// Trigger is the binary gate signal.
type Trigger int

const (
	TriggerEnable Trigger = iota
	TriggerDisable
)

// String returns a human-readable representation of the trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerEnable:
		return "Enable"
	case TriggerDisable:
		return "Disable"
	default:
		return "Unknown"
	}
}

// Source yields elements on demand. Implementations are expected to be
// demand-driven: they do no work until Next is called.
type Source[T any] interface {
	// Next returns the next element. It blocks until one is available, the
	// stream ends (io.EOF by convention), or ctx is done.
	Next(ctx context.Context) (T, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(ctx context.Context) (T, error)

// Next calls f(ctx).
func (f SourceFunc[T]) Next(ctx context.Context) (T, error) { return f(ctx) }

// Gate forwards demand to its source only while open. The open/closed bit is
// the sole retained state; trigger events themselves are not stored.
type Gate[T any] struct {
	src    Source[T]
	logger log.Logger

	mu     sync.Mutex
	open   bool
	opened chan struct{} // closed when the gate opens; replaced on close
}

// New creates a gate over src. The initial bit is the caller's snapshot of
// the controlling signal; see BindMachine for lifecycle-driven gates.
func New[T any](src Source[T], initiallyOpen bool, logger log.Logger) *Gate[T] {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	g := &Gate[T]{
		src:    src,
		logger: logger,
		open:   initiallyOpen,
		opened: make(chan struct{}),
	}
	if initiallyOpen {
		close(g.opened)
	}
	return g
}

// Signal applies a trigger to the gate. Duplicate triggers are no-ops and
// unknown values are ignored.
func (g *Gate[T]) Signal(t Trigger) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch t {
	case TriggerEnable:
		if !g.open {
			g.open = true
			close(g.opened)
			g.logger.Debug("gate opened")
		}
	case TriggerDisable:
		if g.open {
			g.open = false
			g.opened = make(chan struct{})
			g.logger.Debug("gate closed")
		}
	default:
		g.logger.Debug("ignoring unknown gate trigger", log.Int("trigger", int(t)))
	}
}

// Open reports the current open/closed bit.
func (g *Gate[T]) Open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Next pulls the next element from the source, waiting while the gate is
// closed. While parked, no demand reaches the source. An element whose pull
// was already in flight when the gate closed is still delivered; only future
// demand is withheld.
func (g *Gate[T]) Next(ctx context.Context) (T, error) {
	for {
		g.mu.Lock()
		if g.open {
			g.mu.Unlock()
			return g.src.Next(ctx)
		}
		reopen := g.opened
		g.mu.Unlock()

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-reopen:
		}
	}
}
