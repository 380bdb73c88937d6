package helmsman

import (
	"context"
	"sync"

	"github.com/bft-labs/helmsman/internal/app"
	"github.com/bft-labs/helmsman/internal/domain"
	"github.com/bft-labs/helmsman/internal/ports"
	"github.com/bft-labs/helmsman/pkg/inittrack"
	"github.com/bft-labs/helmsman/pkg/lifecycle"
)

// Helmsman is the process lifecycle coordinator. Use New() to create an
// instance, then Start() to launch the registered components.
type Helmsman struct {
	config  Config
	opts    options
	sup     *app.Supervisor
	logger  ports.Logger
	plugins []Plugin

	mu          sync.Mutex
	started     bool
	stopped     bool
	handlerSub  string
	stopRequest sync.Once
}

// New creates a new Helmsman instance with the given configuration.
// The instance starts in StateStarting; call Start() to begin initialization.
// Returns an error if the configuration or the component tree is invalid.
func New(cfg Config, opts ...Option) (*Helmsman, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Validate module version compatibility
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sup, err := app.NewSupervisor(o.components, o.children, cfg.StopTimeout, o.logger)
	if err != nil {
		return nil, err
	}

	h := &Helmsman{
		config:  cfg,
		opts:    o,
		sup:     sup,
		logger:  o.logger,
		plugins: o.plugins,
	}

	if o.eventHandler != nil {
		h.handlerSub = sup.Machine().Subscribe("", lifecycle.ObserverFunc(func(s lifecycle.State) {
			o.eventHandler.OnStateChange(StateChangeEvent{State: s})
		}), StateInitializing, StateActive, StateFailed, StateStopping, StateStopped)
	}

	return h, nil
}

// Start initializes the plugins and launches every registered component.
// It returns once all components have been launched; initialization itself
// completes asynchronously and is observable through Status and Subscribe.
// Returns an error if already started or if a plugin fails to initialize;
// on the failure path every plugin initialized so far is shut down again.
// An instance is single-use: a Start that failed cannot be retried.
func (h *Helmsman) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	h.started = true
	h.mu.Unlock()

	pluginCfg := PluginConfig{
		Logger:  h.logger,
		Machine: h.sup.Machine(),
		RequestStop: func() {
			h.stopRequest.Do(func() {
				go func() { _ = h.Stop() }()
			})
		},
	}
	for i, p := range h.plugins {
		if err := p.Initialize(ctx, pluginCfg); err != nil {
			h.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			h.shutdownPlugins(h.plugins[:i])
			return err
		}
		h.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	if err := h.sup.Start(ctx); err != nil {
		h.shutdownPlugins(h.plugins)
		return err
	}
	return nil
}

// shutdownPlugins shuts the given plugins down in reverse order, logging
// failures. Used both on the normal Stop path and when Start aborts with
// some plugins already initialized.
func (h *Helmsman) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			h.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			h.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
}

// Stop gracefully shuts the component tree down, escalating to forceful
// termination per component as stop timeouts expire, and returns once the
// whole tree has terminated. Shutdown always completes in bounded time and,
// once initiated, cannot be aborted. Safe to call more than once.
func (h *Helmsman) Stop() error {
	if err := h.sup.Stop(context.Background()); err != nil {
		return err
	}

	h.mu.Lock()
	alreadyStopped := h.stopped
	h.stopped = true
	h.mu.Unlock()
	if alreadyStopped {
		return nil
	}

	// Shutdown plugins (in reverse order)
	h.shutdownPlugins(h.plugins)

	return nil
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (h *Helmsman) Status() State {
	return h.sup.Machine().Current()
}

// Machine exposes the lifecycle machine, for gates and custom observers.
func (h *Helmsman) Machine() *lifecycle.Machine {
	return h.sup.Machine()
}

// Subscribe registers fn for the given states and returns the subscriber id
// (generated when id is empty). If the current state is in the interest set
// it is delivered immediately, so late subscribers still learn it.
func (h *Helmsman) Subscribe(id string, fn func(State), states ...State) string {
	return h.sup.Machine().Subscribe(id, lifecycle.ObserverFunc(fn), states...)
}

// Unsubscribe removes a subscriber registered through Subscribe.
func (h *Helmsman) Unsubscribe(id string) {
	h.sup.Machine().Unsubscribe(id)
}

// ReportInit records an initialization outcome. A nil err records success.
// Registered components report implicitly through Start's return value and
// the first report per component wins, so this is mainly for diagnostics
// from units outside the registered set; such reports are informational and
// never gate the Active state.
func (h *Helmsman) ReportInit(componentID string, err error) {
	if err != nil {
		h.sup.Tracker().Report(componentID, inittrack.OutcomeFailed, err.Error())
		return
	}
	h.sup.Tracker().Report(componentID, inittrack.OutcomeSucceeded, "")
}

// FailureReason returns the id and recorded reason of the first
// init-required component that failed, if the process is Failed.
func (h *Helmsman) FailureReason() (componentID, reason string, ok bool) {
	return h.sup.Tracker().FailureReason()
}
