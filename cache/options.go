package cache

import "log/slog"

// Option configures a ResolverCache.
type Option func(*options)

type options struct {
	capacity int
	logger   *slog.Logger
}

// WithCapacity bounds the number of cached entries. When the bound is
// exceeded the oldest entries by insertion order are evicted. Zero, the
// default, means unbounded.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger sets the logger for cache events. Logging is disabled by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
