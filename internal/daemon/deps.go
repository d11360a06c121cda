// SPDX-License-Identifier: MIT

package daemon

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Deps contains dependencies required by the daemon Manager.
type Deps struct {
	// Logger is the structured logger for the daemon
	Logger zerolog.Logger

	// StatusAddr is the listen address of the status server; empty disables it
	StatusAddr string

	// StatusHandler serves the status routes
	StatusHandler http.Handler

	// ShutdownTimeout bounds server shutdown and the shutdown hooks
	ShutdownTimeout time.Duration
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	return nil
}
