package types

import (
	"fmt"
	"time"
)

// Config holds backend selection and parameters for Board.Attach.
type Config struct {
	Backend string `json:"backend" mapstructure:"backend"`
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// BusyTimeout bounds how long a write waits on a locked database.
	// Zero selects DefaultBusyTimeout.
	BusyTimeout time.Duration `json:"busy_timeout" mapstructure:"busy_timeout"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// DefaultBusyTimeout is used when Config.BusyTimeout is zero.
const DefaultBusyTimeout = 5 * time.Second

// Config validation errors. Both wrap ErrValidation.
var (
	ErrBackendEmpty   = fmt.Errorf("%w: backend must not be empty", ErrValidation)
	ErrBackendUnknown = fmt.Errorf("%w: unknown backend", ErrValidation)
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w %q", ErrBackendUnknown, c.Backend)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("%w: busy timeout %s is negative", ErrValidation, c.BusyTimeout)
	}
	return nil
}

// EffectiveBusyTimeout returns BusyTimeout, or DefaultBusyTimeout when unset.
func (c Config) EffectiveBusyTimeout() time.Duration {
	if c.BusyTimeout == 0 {
		return DefaultBusyTimeout
	}
	return c.BusyTimeout
}
