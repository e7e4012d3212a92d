package cache

import (
	"fmt"

	"github.com/jmgilman/go/vfs/core"
)

// Wrapper composes caches by pure delegation: every lookup goes to the
// inner cache untouched. Registration is refused because the inner cache
// already owns its mount set; silently accepting a registration here
// would lose the mount. Lifecycle calls are no-ops for the same reason,
// so discarding a wrapper never stops the cache it wraps.
type Wrapper struct {
	inner core.Cache
}

// Wrap returns a delegating wrapper around inner.
func Wrap(inner core.Cache) *Wrapper {
	return &Wrapper{inner: inner}
}

// Unwrap returns the wrapped cache.
func (w *Wrapper) Unwrap() core.Cache {
	return w.inner
}

// Start is a no-op; the wrapped cache owns its own lifecycle.
func (w *Wrapper) Start() error {
	return nil
}

// Stop is a no-op; the wrapped cache owns its own lifecycle.
func (w *Wrapper) Stop() {}

// Register fails with ErrRegistrationClosed: mounts belong on the
// wrapped cache.
func (w *Wrapper) Register(m *core.Mount) error {
	path := "<nil>"
	if m != nil {
		path = m.Path()
	}
	return fmt.Errorf("register mount %q: %w", path, core.ErrRegistrationClosed)
}

// Unregister is a no-op.
func (w *Wrapper) Unregister(m *core.Mount) {}

// Lookup delegates to the wrapped cache.
func (w *Wrapper) Lookup(key string) (*core.VirtualFile, error) {
	return w.inner.Lookup(key)
}

// Compile-time interface check.
var _ core.Cache = (*Wrapper)(nil)
