// Package proc adapts OS processes to the Component port: polite stop is
// SIGTERM, forceful termination is SIGKILL, and the death notification is
// the process exit.
package proc

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/bft-labs/helmsman/internal/domain"
	"github.com/bft-labs/helmsman/internal/ports"
)

// Process runs one child process as a managed component.
type Process struct {
	spec    domain.ComponentSpec
	command string
	args    []string
	logger  ports.Logger

	mu         sync.Mutex
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	terminated bool // Stop or Kill arrived before the spawn
	done       chan struct{}
	dieOnce    sync.Once
}

// NewProcess creates a process component from its spec and command line.
func NewProcess(spec domain.ComponentSpec, command string, args []string, logger ports.Logger) *Process {
	return &Process{
		spec:    spec,
		command: command,
		args:    args,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// ID identifies the component.
func (p *Process) ID() string { return p.spec.ID }

// InitRequired reports whether a successful spawn gates the Active state.
func (p *Process) InitRequired() bool { return p.spec.InitRequired }

// StopTimeout is the shutdown window this process advertises.
func (p *Process) StopTimeout() time.Duration { return p.spec.StopTimeout }

// Start spawns the child process. Initialization is complete once the spawn
// succeeds; a spawn failure is the recorded init failure reason. The exit
// watcher closes Done when the child terminates for any cause. A Stop or
// Kill that arrived before Start refuses the spawn: the child would outlive
// the shutdown protocol and hang its unbounded death-notification waits.
func (p *Process) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.terminated {
		p.die()
		return fmt.Errorf("spawn %s: stop requested before launch", p.spec.ID)
	}
	if p.cmd != nil {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyRunning, p.spec.ID)
	}

	cmd := exec.Command(p.command, p.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		p.die()
		return fmt.Errorf("stdout pipe for %s: %w", p.spec.ID, err)
	}

	if err := cmd.Start(); err != nil {
		p.die()
		return fmt.Errorf("spawn %s: %w", p.spec.ID, err)
	}
	p.cmd = cmd
	p.stdout = stdout

	p.logger.Info("process started",
		ports.String("component", p.spec.ID),
		ports.Int("pid", cmd.Process.Pid),
	)

	go p.watch(cmd)
	return nil
}

// watch waits for the child to exit and publishes the death notification.
func (p *Process) watch(cmd *exec.Cmd) {
	err := cmd.Wait()
	if err != nil {
		p.logger.Info("process exited",
			ports.String("component", p.spec.ID),
			ports.Err(err),
		)
	} else {
		p.logger.Info("process exited", ports.String("component", p.spec.ID))
	}
	p.die()
}

// die publishes the death notification exactly once.
func (p *Process) die() { p.dieOnce.Do(func() { close(p.done) }) }

// Stop sends SIGTERM. The process is free to flush and clean up; the
// coordinator escalates if it outlives its window. A Stop before the spawn
// marks the component terminated so a racing Start cannot launch an
// unsupervised child.
func (p *Process) Stop(ctx context.Context) error {
	p.mu.Lock()
	cmd := p.cmd
	if cmd == nil {
		p.terminated = true
	}
	p.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return fmt.Errorf("%w: %s", domain.ErrNotRunning, p.spec.ID)
	}
	return cmd.Process.Signal(syscall.SIGTERM)
}

// Kill sends SIGKILL. A Kill before the spawn marks the component terminated
// and publishes the death notification, so waiters on Done are released and
// a racing Start cannot launch an unsupervised child.
func (p *Process) Kill() {
	p.mu.Lock()
	cmd := p.cmd
	if cmd == nil {
		p.terminated = true
	}
	p.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		p.die()
		return
	}
	_ = cmd.Process.Kill()
}

// Done is closed when the child process has exited.
func (p *Process) Done() <-chan struct{} { return p.done }

// Stdout returns the child's stdout pipe. Valid after Start.
func (p *Process) Stdout() io.Reader {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stdout
}
