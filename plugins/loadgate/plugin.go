// Package loadgate provides load-based stream gating for helmsman.
// When enabled, it periodically samples system load and disables attached
// gates while the process is under heavy load, re-enabling them once the
// load recedes.
package loadgate

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/bft-labs/helmsman/pkg/gate"
	"github.com/bft-labs/helmsman/pkg/helmsman"
)

// goroutinesPerCPUAtFullLoad is the goroutines-per-CPU ratio treated as
// full load by the default sampler. A rough heuristic; production systems
// should supply a Sampler backed by real metrics.
const goroutinesPerCPUAtFullLoad = 12.0

// Signaler receives gating triggers. *gate.Gate[T] satisfies it for any T.
type Signaler interface {
	Signal(t gate.Trigger)
}

// Plugin implements load-based gating. It samples load on a fixed interval
// and signals the attached gates: TriggerDisable when the sampled load
// crosses the threshold, TriggerEnable when it drops back below.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	threshold float64
	interval  time.Duration
	sampler   func() float64

	// Runtime state
	targets []Signaler
	gated   bool
	logger  helmsman.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Config holds configuration options for the load gate plugin.
type Config struct {
	// Threshold is the load fraction (0.0-1.0) above which gates are
	// disabled.
	// Default: 0.85
	Threshold float64

	// SampleInterval is how often load is sampled.
	// Default: 1 second
	SampleInterval time.Duration

	// Sampler returns the current load as a fraction of capacity. When nil,
	// a goroutine-count heuristic is used.
	Sampler func() float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:      0.85,
		SampleInterval: time.Second,
	}
}

// New creates a new load gate plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.85
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = time.Second
	}
	if cfg.Sampler == nil {
		cfg.Sampler = goroutineLoad
	}

	return &Plugin{
		threshold: cfg.Threshold,
		interval:  cfg.SampleInterval,
		sampler:   cfg.Sampler,
	}
}

// Attach registers a gate to be driven by this plugin. Call before the
// plugin is initialized.
func (p *Plugin) Attach(s Signaler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.targets = append(p.targets, s)
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "loadgate"
}

// Initialize sets up the plugin and starts the sampling loop.
func (p *Plugin) Initialize(ctx context.Context, cfg helmsman.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	hasTargets := len(p.targets) > 0
	p.mu.Unlock()

	if !hasTargets {
		p.logger.Warn("load gate disabled: no gates attached")
		return nil
	}

	sampleCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("load gate plugin initialized")

	p.wg.Add(1)
	go p.sampleLoop(sampleCtx)

	return nil
}

// Shutdown stops the sampling loop.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// sampleLoop samples load on the configured interval and signals the
// attached gates on threshold crossings.
func (p *Plugin) sampleLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sample()
		}
	}
}

func (p *Plugin) sample() {
	load := p.sampler()

	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case !p.gated && load >= p.threshold:
		p.gated = true
		p.logger.Warn("load gate: load above threshold, disabling gates")
		for _, s := range p.targets {
			s.Signal(gate.TriggerDisable)
		}
	case p.gated && load < p.threshold:
		p.gated = false
		p.logger.Info("load gate: load recovered, enabling gates")
		for _, s := range p.targets {
			s.Signal(gate.TriggerEnable)
		}
	}
}

// goroutineLoad estimates load as the goroutines-per-CPU ratio relative to
// goroutinesPerCPUAtFullLoad.
func goroutineLoad() float64 {
	perCPU := float64(runtime.NumGoroutine()) / float64(runtime.NumCPU())
	return perCPU / goroutinesPerCPUAtFullLoad
}

// Ensure Plugin implements helmsman.Plugin.
var _ helmsman.Plugin = (*Plugin)(nil)
