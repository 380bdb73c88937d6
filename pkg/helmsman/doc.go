// Package helmsman coordinates the startup and shutdown of a
// multi-component process.
//
// Helmsman owns the process-wide lifecycle state machine, gates entry into
// the Active state on the initialization of every init-required component,
// and tears the component tree down through a bounded, two-phase
// (polite-then-forceful) shutdown protocol. Lifecycle state is transient:
// it is rebuilt fresh on every process start and never persisted.
//
// # Basic Usage
//
//	h, err := helmsman.New(helmsman.Config{},
//	    helmsman.WithComponent(db),
//	    helmsman.WithComponent(api, "db"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := h.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := h.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Lifecycle States
//
// A process moves through [StateStarting], [StateInitializing], then either
// [StateActive] or [StateFailed], and finally [StateStopping] and
// [StateStopped]. Use [Helmsman.Status] to query the current state and
// [Helmsman.Subscribe] to observe transitions.
//
// # Event Handling
//
// To receive state-change notifications, implement [EventHandler] and pass
// it via [WithEventHandler]. Events are delivered asynchronously and in
// transition order; handlers should return quickly.
//
// # Stream Gating
//
// Couple a data stream to the lifecycle with the gate package:
//
//	g := gate.New[string](source, false, logger)
//	g.BindMachine(h.Machine(), nil)
//
// # Plugins
//
// Optional plugins extend a Helmsman instance:
//
//	import "github.com/bft-labs/helmsman/plugins/configwatcher"
//
//	h, err := helmsman.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{ConfigPath: path}),
//	)
//
// Plugins are initialized in registration order and shut down in reverse.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package helmsman
