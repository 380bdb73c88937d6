// Package configwatcher provides config file monitoring for helmsman.
// When enabled, it watches the configuration file for changes and requests
// a graceful stop of the process so the operator's supervisor can restart
// it with the new configuration.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/helmsman/pkg/helmsman"
	"github.com/bft-labs/helmsman/pkg/log"
)

// Plugin implements config watching functionality.
// It monitors the configured file and triggers a graceful stop when the
// file is written or recreated.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	configPath    string
	debounceDelay time.Duration

	// Runtime state
	logger      helmsman.Logger
	requestStop func()
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	debounce    *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// ConfigPath is the configuration file to watch. Empty disables the
	// plugin.
	ConfigPath string

	// DebounceDelay is the delay to wait after a file change before acting.
	// Editors often produce several events per save.
	// Default: 500 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 500 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 500 * time.Millisecond
	}

	return &Plugin{
		configPath:    cfg.ConfigPath,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize sets up the plugin and starts the config watcher.
func (p *Plugin) Initialize(ctx context.Context, cfg helmsman.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	p.requestStop = cfg.RequestStop
	p.mu.Unlock()

	if p.configPath == "" {
		p.logger.Warn("config watcher disabled: no config path set")
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized",
		log.String("path", p.configPath))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	return nil
}

// watchLoop watches for config file changes. The parent directory is
// watched rather than the file itself so atomic rename-into-place saves
// are still observed.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: failed to create watcher")
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.configPath)); err != nil {
		p.logger.Error("config watcher: failed to watch directory")
		return
	}

	target := filepath.Base(p.configPath)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceStop(p.debounceDelay)

		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error")
		}
	}
}

func (p *Plugin) debounceStop(delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(delay, func() {
		p.mu.RLock()
		logger := p.logger
		requestStop := p.requestStop
		p.mu.RUnlock()

		logger.Info("config watcher: configuration changed, requesting stop")
		if requestStop != nil {
			requestStop()
		}
	})
}

// Ensure Plugin implements helmsman.Plugin.
var _ helmsman.Plugin = (*Plugin)(nil)
