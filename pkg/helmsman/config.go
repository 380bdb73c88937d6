package helmsman

import (
	"fmt"
	"time"

	"github.com/bft-labs/helmsman/internal/domain"
)

// DefaultStopTimeout bounds the root's polite shutdown phase when the
// configuration does not say otherwise.
const DefaultStopTimeout = 30 * time.Second

// Config holds configuration for a Helmsman instance. Components themselves
// are registered through [WithComponent]; per-component stop timeouts are
// advertised by the components, not configured here.
type Config struct {
	// StopTimeout is the stop timeout of the synthetic root node: unclaimed
	// components get half of it as their collective polite window.
	StopTimeout time.Duration
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.StopTimeout == 0 {
		c.StopTimeout = DefaultStopTimeout
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.StopTimeout < 0 {
		return fmt.Errorf("%w: stop timeout must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
