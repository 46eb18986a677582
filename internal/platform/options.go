package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/dailynotes/pkg/core"
)

// options holds the internal configuration for wiring a Store.
type options struct {
	backend   core.Backend
	logger    *slog.Logger
	clock     func() time.Time
	forceTemp bool
}

// Option defines a functional option for New.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger handed to the backend, hub and store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBackend injects a backend (e.g. a mock), skipping storage.kind.
// The backend is still initialized.
func WithBackend(b core.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithClock overrides the store clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithForceTemp re-roots the notes directory into the temp dir regardless
// of how the process was started.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}
