package lifecycle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/bft-labs/helmsman/pkg/log"
)

// Common lifecycle errors.
var (
	// ErrIllegalTransition is returned when a requested transition is not an
	// edge of the fixed graph. Callers racing on duplicate requests can treat
	// it as benign; the machine state is unchanged.
	ErrIllegalTransition = errors.New("lifecycle: illegal transition")
)

// notifyQueueSize bounds the per-subscriber delivery queue. The transition
// graph admits at most four transitions per process lifetime, so the queue
// can never fill for a live subscriber.
const notifyQueueSize = 8

// Observer receives state-change notifications.
type Observer interface {
	OnStateChange(s State)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(s State)

// OnStateChange calls f(s).
func (f ObserverFunc) OnStateChange(s State) { f(s) }

// subscription pairs an observer with its interest set and delivery queue.
type subscription struct {
	id       string
	observer Observer
	interest map[State]bool
	queue    chan State
}

// Machine owns the authoritative lifecycle state and the subscriber
// registry. All mutations are serialized through a single mutex; observers
// never share memory with the machine, they only receive state values.
type Machine struct {
	mu     sync.Mutex
	state  State
	subs   map[string]*subscription
	logger log.Logger
}

// NewMachine creates a machine in StateStarting with an empty registry.
func NewMachine(logger log.Logger) *Machine {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Machine{
		state:  StateStarting,
		subs:   make(map[string]*subscription),
		logger: logger,
	}
}

// Current returns the current state without side effects.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// TransitionTo applies the transition to next if it is a legal successor of
// the current state, then notifies every subscriber interested in next.
// Requesting the current state again is a no-op and emits no notifications.
// Illegal requests leave the state untouched and return ErrIllegalTransition.
func (m *Machine) TransitionTo(next State, reason string) error {
	m.mu.Lock()
	prev := m.state

	if next == prev {
		m.mu.Unlock()
		return nil
	}

	if !prev.CanTransitionTo(next) {
		m.mu.Unlock()
		m.logger.Warn("rejected lifecycle transition",
			log.String("from", prev.String()),
			log.String("to", next.String()),
			log.String("reason", reason),
		)
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, prev, next)
	}

	m.state = next

	// Enqueue under the lock so every subscriber sees transitions in the
	// order they were applied. Enqueueing never blocks; a full queue means
	// the subscriber stopped draining and loses the notification.
	for _, sub := range m.subs {
		if sub.interest[next] {
			m.enqueue(sub, next)
		}
	}
	m.mu.Unlock()

	m.logger.Info("lifecycle transition",
		log.String("from", prev.String()),
		log.String("to", next.String()),
		log.String("reason", reason),
	)

	return nil
}

// Subscribe registers an observer for the given interest set and returns the
// subscriber id (generated when id is empty). If the current state is in the
// interest set, a best-effort delivery of it is queued immediately, so
// observers registered after a transition still learn the latest state.
// Subscribing an already-registered id replaces the previous subscription.
func (m *Machine) Subscribe(id string, observer Observer, states ...State) string {
	if id == "" {
		id = uuid.NewString()
	}

	interest := make(map[State]bool, len(states))
	for _, s := range states {
		interest[s] = true
	}

	sub := &subscription{
		id:       id,
		observer: observer,
		interest: interest,
		queue:    make(chan State, notifyQueueSize),
	}
	go m.deliver(sub)

	m.mu.Lock()
	if prev, ok := m.subs[id]; ok {
		close(prev.queue)
	}
	m.subs[id] = sub
	if interest[m.state] {
		m.enqueue(sub, m.state)
	}
	m.mu.Unlock()

	return id
}

// Unsubscribe removes the subscription for id. Notifications already queued
// for the observer may still be delivered or dropped; either is allowed.
func (m *Machine) Unsubscribe(id string) {
	m.mu.Lock()
	sub, ok := m.subs[id]
	if ok {
		delete(m.subs, id)
		close(sub.queue)
	}
	m.mu.Unlock()
}

// Close unsubscribes every observer and stops their delivery goroutines.
// The machine itself remains queryable.
func (m *Machine) Close() {
	m.mu.Lock()
	for id, sub := range m.subs {
		delete(m.subs, id)
		close(sub.queue)
	}
	m.mu.Unlock()
}

// enqueue performs a non-blocking send to the subscriber queue.
// Callers must hold m.mu.
func (m *Machine) enqueue(sub *subscription, s State) {
	select {
	case sub.queue <- s:
	default:
		m.logger.Warn("dropped lifecycle notification",
			log.String("subscriber", sub.id),
			log.String("state", s.String()),
		)
	}
}

// deliver drains the subscriber queue, isolating observer failures so a
// panicking observer cannot corrupt the registry or starve other observers.
func (m *Machine) deliver(sub *subscription) {
	for s := range sub.queue {
		m.notify(sub, s)
	}
}

func (m *Machine) notify(sub *subscription, s State) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("observer panicked during notification",
				log.String("subscriber", sub.id),
				log.String("state", s.String()),
				log.Any("panic", r),
			)
		}
	}()
	sub.observer.OnStateChange(s)
}
