package loadgate

import "github.com/bft-labs/helmsman/pkg/helmsman"

// WithLoadGate returns a helmsman Option that enables load-based gating for
// the given gates. While sampled load stays above the threshold, the gates
// are disabled and demand stops propagating to their sources.
//
// Usage:
//
//	lg := loadgate.New(loadgate.Config{Threshold: 0.85})
//	lg.Attach(outputGate)
//	h, err := helmsman.New(cfg, loadgate.WithLoadGate(lg))
func WithLoadGate(plugin *Plugin) helmsman.Option {
	return helmsman.WithPlugin(plugin)
}
