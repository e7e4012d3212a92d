package boltfs

import (
	"log/slog"
	"runtime"
)

// Option configures opening or creating a bundle.
type Option func(*options)

type options struct {
	workers int
	logger  *slog.Logger
}

func defaultOptions() *options {
	return &options{
		workers: runtime.NumCPU(),
		logger:  slog.New(slog.DiscardHandler),
	}
}

// WithWorkers bounds the number of source files hashed concurrently
// during Create. Defaults to the number of CPUs. Open ignores it.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger for bundle events. Logging is disabled by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
