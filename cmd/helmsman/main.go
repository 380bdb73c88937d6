package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/helmsman/internal/adapters/proc"
	"github.com/bft-labs/helmsman/internal/cliconfig"
	"github.com/bft-labs/helmsman/internal/domain"
	"github.com/bft-labs/helmsman/pkg/gate"
	"github.com/bft-labs/helmsman/pkg/helmsman"
	"github.com/bft-labs/helmsman/pkg/log"
	"github.com/bft-labs/helmsman/plugins/configwatcher"
)

const helpDescription = `
Supervise a tree of child processes with ordered, bounded shutdown.

Highlights:
  - Tracks initialization and reaches Active only when required children are up.
  - Two-phase stop: SIGTERM with a deadline, SIGKILL for stragglers.
  - Children stop strictly before their parents.
  - Configure via file, env (HELMSMAN_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  helmsman --config /etc/helmsman/config.toml
  helmsman --config ./config.toml --stop-timeout 10s --log-level debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newLogger(level string) (*log.ZerologLogger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	zl := zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	return log.NewZerologLogger(zl), nil
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "helmsman",
		Short:   "Supervise a tree of child processes with ordered, bounded shutdown",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides file config but is overridden by flags
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}

			return run(cfg, cfgFile, logger)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.helmsman/config.toml)")
	root.Flags().DurationVar(&cfg.StopTimeout, "stop-timeout", cfg.StopTimeout, "polite shutdown window for the process tree")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "request a graceful stop when the config file changes")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "helmsman:", err)
		os.Exit(1)
	}
}

func run(cfg cliconfig.Config, cfgFile string, logger *log.ZerologLogger) error {
	processes := make(map[string]*proc.Process, len(cfg.Processes))

	opts := []helmsman.Option{helmsman.WithLogger(logger)}
	for _, pc := range cfg.Processes {
		p := proc.NewProcess(domain.ComponentSpec{
			ID:           pc.ID,
			InitRequired: pc.InitRequired,
			StopTimeout:  pc.StopTimeout,
			Children:     pc.Children,
		}, pc.Command, pc.Args, logger)
		processes[pc.ID] = p
		opts = append(opts, helmsman.WithComponent(p, pc.Children...))
	}

	if cfg.WatchConfig && cfgFile != "" {
		opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
			ConfigPath: cfgFile,
		}))
	}

	h, err := helmsman.New(helmsman.Config{StopTimeout: cfg.StopTimeout}, opts...)
	if err != nil {
		return fmt.Errorf("create helmsman: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := h.Start(ctx); err != nil {
		return fmt.Errorf("start helmsman: %w", err)
	}

	// Forward child output through lifecycle-bound gates: lines flow only
	// while Active, and demand stops at the first Stopping transition.
	for _, pc := range cfg.Processes {
		if !pc.ForwardOutput {
			continue
		}
		p := processes[pc.ID]
		stdout := p.Stdout()
		if stdout == nil {
			continue
		}
		g := gate.New[string](proc.NewLineSource(stdout), false, logger)
		g.BindMachine(h.Machine(), nil)
		go forwardLines(ctx, pc.ID, g)
	}

	// Detect terminal or failed states through the registry; late-subscriber
	// delivery covers a transition that already happened.
	doneCh := make(chan struct{})
	var doneOnce sync.Once
	sub := h.Subscribe("", func(helmsman.State) {
		doneOnce.Do(func() { close(doneCh) })
	}, helmsman.StateStopped, helmsman.StateFailed)
	defer h.Unsubscribe(sub)

	select {
	case <-sigCh:
		logger.Info("received signal, stopping")
	case <-doneCh:
		if h.Status() == helmsman.StateFailed {
			if id, reason, ok := h.FailureReason(); ok {
				logger.Error("initialization failed",
					log.String("component", id),
					log.String("reason", reason))
			}
		}
	}

	if err := h.Stop(); err != nil {
		return fmt.Errorf("stop helmsman: %w", err)
	}
	return nil
}

// forwardLines copies gated lines to stdout until the stream ends.
func forwardLines(ctx context.Context, id string, g *gate.Gate[string]) {
	for {
		line, err := g.Next(ctx)
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "[%s] read error: %v\n", id, err)
			}
			return
		}
		fmt.Printf("[%s] %s\n", id, line)
	}
}
