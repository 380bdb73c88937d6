package helmsman_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/helmsman/internal/domain"
	"github.com/bft-labs/helmsman/pkg/helmsman"
)

// fakeComponent is a controllable component for facade tests.
type fakeComponent struct {
	id           string
	initRequired bool
	startErr     error

	mu      sync.Mutex
	stopped bool
	killed  bool
	done    chan struct{}
	once    sync.Once
}

func newFakeComponent(id string, initRequired bool) *fakeComponent {
	return &fakeComponent{
		id:           id,
		initRequired: initRequired,
		done:         make(chan struct{}),
	}
}

func (f *fakeComponent) ID() string                  { return f.id }
func (f *fakeComponent) InitRequired() bool          { return f.initRequired }
func (f *fakeComponent) StopTimeout() time.Duration  { return time.Second }
func (f *fakeComponent) Done() <-chan struct{}       { return f.done }
func (f *fakeComponent) Start(context.Context) error { return f.startErr }

func (f *fakeComponent) Stop(context.Context) error {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
	f.once.Do(func() { close(f.done) })
	return nil
}

func (f *fakeComponent) Kill() {
	f.mu.Lock()
	f.killed = true
	f.mu.Unlock()
	f.once.Do(func() { close(f.done) })
}

func (f *fakeComponent) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func waitForStatus(t *testing.T, h *helmsman.Helmsman, want helmsman.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Status() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Status = %v, want %v", h.Status(), want)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := helmsman.New(helmsman.Config{StopTimeout: -time.Second})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestNew_DuplicateComponent(t *testing.T) {
	_, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(newFakeComponent("a", false)),
		helmsman.WithComponent(newFakeComponent("a", false)),
	)
	if !errors.Is(err, domain.ErrDuplicateComponent) {
		t.Errorf("New() error = %v, want ErrDuplicateComponent", err)
	}
}

func TestStartReachesActive(t *testing.T) {
	h, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(newFakeComponent("api", true)),
		helmsman.WithComponent(newFakeComponent("worker", true)),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := h.Status(); got != helmsman.StateStarting {
		t.Errorf("Initial status = %v, want %v", got, helmsman.StateStarting)
	}

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForStatus(t, h, helmsman.StateActive)
}

func TestRequiredFailureReachesFailed(t *testing.T) {
	bad := newFakeComponent("db", true)
	bad.startErr = errors.New("connection refused")

	h, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(newFakeComponent("api", true)),
		helmsman.WithComponent(bad),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForStatus(t, h, helmsman.StateFailed)

	id, reason, ok := h.FailureReason()
	if !ok {
		t.Fatal("FailureReason() ok = false, want true")
	}
	if id != "db" {
		t.Errorf("Failed component = %v, want db", id)
	}
	if reason != "connection refused" {
		t.Errorf("Failure reason = %v, want connection refused", reason)
	}
}

func TestStopTearsDownComponents(t *testing.T) {
	a := newFakeComponent("a", true)
	b := newFakeComponent("b", true)

	h, err := helmsman.New(helmsman.Config{StopTimeout: time.Second},
		helmsman.WithComponent(a, "b"),
		helmsman.WithComponent(b),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForStatus(t, h, helmsman.StateActive)

	if err := h.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if h.Status() != helmsman.StateStopped {
		t.Errorf("Status after Stop = %v, want %v", h.Status(), helmsman.StateStopped)
	}
	if !a.wasStopped() || !b.wasStopped() {
		t.Error("Both components should have been stopped")
	}

	// Second Stop is benign.
	if err := h.Stop(); err != nil {
		t.Errorf("Second Stop failed: %v", err)
	}
}

func TestDoubleStart(t *testing.T) {
	var mu sync.Mutex
	var events []string

	h, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(newFakeComponent("a", true)),
		helmsman.WithPlugin(&orderedPlugin{name: "p", log: &events, mu: &mu}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForStatus(t, h, helmsman.StateActive)

	if err := h.Start(context.Background()); !errors.Is(err, domain.ErrAlreadyRunning) {
		t.Errorf("Second Start = %v, want ErrAlreadyRunning", err)
	}

	// The rejected Start must not have touched the running plugins.
	mu.Lock()
	got := append([]string(nil), events...)
	mu.Unlock()
	if len(got) != 1 || got[0] != "init:p" {
		t.Errorf("Plugin events after rejected Start = %v, want [init:p]", got)
	}
}

func TestStopBeforeStart(t *testing.T) {
	h, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(newFakeComponent("a", false)),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := h.Stop(); !errors.Is(err, domain.ErrNotRunning) {
		t.Errorf("Stop() error = %v, want ErrNotRunning", err)
	}
}

// recordingHandler collects state change events.
type recordingHandler struct {
	helmsman.BaseEventHandler

	mu     sync.Mutex
	states []helmsman.State
}

func (r *recordingHandler) OnStateChange(event helmsman.StateChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, event.State)
}

func (r *recordingHandler) snapshot() []helmsman.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]helmsman.State, len(r.states))
	copy(out, r.states)
	return out
}

func TestEventHandlerObservesLifecycle(t *testing.T) {
	handler := &recordingHandler{}

	h, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(newFakeComponent("a", true)),
		helmsman.WithEventHandler(handler),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForStatus(t, h, helmsman.StateActive)
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	want := []helmsman.State{
		helmsman.StateInitializing,
		helmsman.StateActive,
		helmsman.StateStopping,
		helmsman.StateStopped,
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(handler.snapshot()) >= len(want) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	got := handler.snapshot()
	if len(got) != len(want) {
		t.Fatalf("Events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Event[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSubscribeReceivesCurrentState(t *testing.T) {
	h, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(newFakeComponent("a", true)),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForStatus(t, h, helmsman.StateActive)

	got := make(chan helmsman.State, 1)
	id := h.Subscribe("", func(s helmsman.State) {
		select {
		case got <- s:
		default:
		}
	}, helmsman.StateActive)
	defer h.Unsubscribe(id)

	select {
	case s := <-got:
		if s != helmsman.StateActive {
			t.Errorf("Late subscriber got %v, want %v", s, helmsman.StateActive)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Late subscriber never notified of current state")
	}
}

// orderedPlugin records initialize/shutdown ordering across instances.
type orderedPlugin struct {
	name    string
	initErr error
	log     *[]string
	mu      *sync.Mutex
}

func (p *orderedPlugin) Name() string { return p.name }

func (p *orderedPlugin) Initialize(ctx context.Context, cfg helmsman.PluginConfig) error {
	p.mu.Lock()
	*p.log = append(*p.log, "init:"+p.name)
	p.mu.Unlock()
	return p.initErr
}

func (p *orderedPlugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	*p.log = append(*p.log, "shutdown:"+p.name)
	p.mu.Unlock()
	return nil
}

func TestPluginLifecycleOrdering(t *testing.T) {
	var mu sync.Mutex
	var events []string

	h, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(newFakeComponent("a", true)),
		helmsman.WithPlugin(&orderedPlugin{name: "first", log: &events, mu: &mu}),
		helmsman.WithPlugin(&orderedPlugin{name: "second", log: &events, mu: &mu}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForStatus(t, h, helmsman.StateActive)
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	mu.Lock()
	got := append([]string(nil), events...)
	mu.Unlock()

	want := []string{"init:first", "init:second", "shutdown:second", "shutdown:first"}
	if len(got) != len(want) {
		t.Fatalf("Plugin events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Plugin event[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPluginInitFailureAbortsStart(t *testing.T) {
	var mu sync.Mutex
	var events []string
	good := &orderedPlugin{name: "good", log: &events, mu: &mu}
	bad := &orderedPlugin{name: "bad", initErr: errors.New("boom"), log: &events, mu: &mu}

	h, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(newFakeComponent("a", true)),
		helmsman.WithPlugin(good),
		helmsman.WithPlugin(bad),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := h.Start(context.Background()); err == nil {
		t.Fatal("Start should fail when a plugin fails to initialize")
	}
	if h.Status() != helmsman.StateStarting {
		t.Errorf("Status = %v, want %v", h.Status(), helmsman.StateStarting)
	}

	// Plugins initialized before the failure are shut down again, so an
	// aborted Start leaks no plugin goroutines.
	mu.Lock()
	got := append([]string(nil), events...)
	mu.Unlock()

	want := []string{"init:good", "init:bad", "shutdown:good"}
	if len(got) != len(want) {
		t.Fatalf("Plugin events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Plugin event[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// stopRequestingPlugin calls RequestStop once the process is Active.
type stopRequestingPlugin struct{}

func (stopRequestingPlugin) Name() string { return "stoprequester" }

func (stopRequestingPlugin) Initialize(ctx context.Context, cfg helmsman.PluginConfig) error {
	cfg.Machine.Subscribe("stoprequester", observerFunc(func() {
		cfg.RequestStop()
		cfg.RequestStop() // duplicate requests are benign
	}), helmsman.StateActive)
	return nil
}

func (stopRequestingPlugin) Shutdown(ctx context.Context) error { return nil }

type observerFunc func()

func (f observerFunc) OnStateChange(helmsman.State) { f() }

func TestPluginRequestStop(t *testing.T) {
	a := newFakeComponent("a", true)

	h, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(a),
		helmsman.WithPlugin(stopRequestingPlugin{}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitForStatus(t, h, helmsman.StateStopped)
	if !a.wasStopped() {
		t.Error("Component should have been stopped by the requested stop")
	}
}

func TestReportInitInformational(t *testing.T) {
	h, err := helmsman.New(helmsman.Config{},
		helmsman.WithComponent(newFakeComponent("a", true)),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForStatus(t, h, helmsman.StateActive)

	// A failure report for a non-required unit must not fail the process.
	h.ReportInit("sidecar", errors.New("late failure"))

	time.Sleep(50 * time.Millisecond)
	if h.Status() != helmsman.StateActive {
		t.Errorf("Status = %v, want Active after informational report", h.Status())
	}
}

func TestModuleVersions(t *testing.T) {
	versions := helmsman.ModuleVersions()
	for _, name := range []string{"helmsman", "lifecycle", "inittrack", "shutdown", "gate", "log"} {
		if versions[name] == "" {
			t.Errorf("ModuleVersions() missing %q", name)
		}
	}
}
