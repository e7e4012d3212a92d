// Package cache provides resolved-handle caches for the virtual
// filesystem.
//
// A ResolverCache memoizes lookups by canonical identifier so repeated
// resolutions of the same path skip tree traversal. A Wrapper composes
// caches by pure delegation while refusing to accept registrations of
// its own.
package cache

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jmgilman/go/vfs/core"
)

// Scheme prefixes every canonical identifier the cache resolves.
const Scheme = "vfs:"

// ResolverCache maps canonical identifiers to resolved handles. Mounts
// register with the cache; a lookup miss resolves through the registered
// mount owning the identifier and stores the result.
//
// The cache is safe for concurrent use. Concurrent misses for the same
// identifier may both resolve; the last writer wins, which is harmless
// because both handles name the same position.
type ResolverCache struct {
	mu       sync.RWMutex
	started  bool
	mounts   map[string]*core.Mount       // mount path → mount
	entries  map[string]*core.VirtualFile // identifier → resolved handle
	order    []string                     // identifier insertion order, oldest first
	capacity int
	log      *slog.Logger
}

// New creates a resolver cache. The cache must be started before use.
//
// Example:
//
//	c := cache.New(cache.WithCapacity(1024))
//	if err := c.Start(); err != nil { ... }
//	defer c.Stop()
func New(opts ...Option) *ResolverCache {
	o := &options{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &ResolverCache{
		capacity: o.capacity,
		log:      o.logger,
	}
}

// Start moves the cache into the started state. Starting an already
// started cache is a no-op.
func (c *ResolverCache) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.started = true
	c.mounts = make(map[string]*core.Mount)
	c.entries = make(map[string]*core.VirtualFile)
	c.order = nil
	c.log.Debug("cache started", "capacity", c.capacity)
	return nil
}

// Stop releases all cached entries and registered mounts. Stopping an
// already stopped cache is a no-op.
func (c *ResolverCache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	c.started = false
	c.log.Debug("cache stopped", "entries", len(c.entries), "mounts", len(c.mounts))
	c.mounts = nil
	c.entries = nil
	c.order = nil
}

// Register adds a mount to the set the cache resolves against. A mount
// path the cache already tracks fails with ErrDuplicateContext; a
// stopped cache fails with ErrCacheStopped.
func (c *ResolverCache) Register(m *core.Mount) error {
	if m == nil {
		return fmt.Errorf("register: nil mount")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return fmt.Errorf("register mount %q: %w", m.Path(), core.ErrCacheStopped)
	}
	if _, ok := c.mounts[m.Path()]; ok {
		return fmt.Errorf("register mount %q: %w", m.Path(), core.ErrDuplicateContext)
	}
	c.mounts[m.Path()] = m
	c.log.Debug("registered mount", "path", m.Path())
	return nil
}

// Unregister removes a mount and purges every entry resolved through it.
// Unregistering an unknown mount, or calling on a stopped cache, is a
// silent no-op.
func (c *ResolverCache) Unregister(m *core.Mount) {
	if m == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	cur, ok := c.mounts[m.Path()]
	if !ok || cur != m {
		return
	}
	delete(c.mounts, m.Path())

	purged := 0
	for key, f := range c.entries {
		if f.Mount() == m {
			delete(c.entries, key)
			purged++
		}
	}
	if purged > 0 {
		order := c.order[:0]
		for _, key := range c.order {
			if _, ok := c.entries[key]; ok {
				order = append(order, key)
			}
		}
		c.order = order
	}
	c.log.Debug("unregistered mount", "path", m.Path(), "purged", purged)
}

// Lookup returns the handle for the given canonical identifier. A hit
// returns the cached handle without traversal; a miss resolves through
// the registered mount owning the identifier, stores the result, and
// returns it. Resolution failures propagate verbatim. An identifier no
// registered mount covers fails with fs.ErrNotExist; a stopped cache
// fails with ErrCacheStopped.
func (c *ResolverCache) Lookup(key string) (*core.VirtualFile, error) {
	c.mu.RLock()
	if !c.started {
		c.mu.RUnlock()
		return nil, core.PathError("lookup", key, core.ErrCacheStopped)
	}
	if f, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		c.log.Debug("cache hit", "key", key)
		return f, nil
	}
	m, rel, ok := c.locate(key)
	c.mu.RUnlock()

	if !ok {
		return nil, core.PathError("lookup", key, core.ErrNotExist)
	}
	f, err := m.Find(rel)
	if err != nil {
		return nil, err
	}
	c.store(key, f)
	return f, nil
}

// Len returns the number of cached entries.
func (c *ResolverCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// locate returns the registered mount with the longest path prefix of the
// identifier and the remaining mount-relative path. Caller holds c.mu.
func (c *ResolverCache) locate(key string) (*core.Mount, string, bool) {
	full, ok := strings.CutPrefix(key, Scheme)
	if !ok || !strings.HasPrefix(full, "/") {
		return nil, "", false
	}
	var best *core.Mount
	for _, m := range c.mounts {
		if !underMount(full, m.Path()) {
			continue
		}
		if best == nil || len(m.Path()) > len(best.Path()) {
			best = m
		}
	}
	if best == nil {
		return nil, "", false
	}
	return best, relativeTo(full, best.Path()), true
}

// store records a resolved handle, evicting the oldest entries beyond
// capacity. A cache stopped while the miss resolved drops the result.
func (c *ResolverCache) store(key string, f *core.VirtualFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = f

	for c.capacity > 0 && len(c.entries) > c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.log.Debug("cache evicted", "key", oldest)
	}
	c.log.Debug("cache store", "key", key, "entries", len(c.entries))
}

// underMount reports whether full lies at or below the mount path.
func underMount(full, mountPath string) bool {
	if mountPath == "/" || full == mountPath {
		return true
	}
	return strings.HasPrefix(full, mountPath+"/")
}

// relativeTo strips the mount path prefix from full, returning a
// mount-relative slash path ("" for the mount point itself).
func relativeTo(full, mountPath string) string {
	if full == mountPath {
		return ""
	}
	if mountPath == "/" {
		return full[1:]
	}
	return full[len(mountPath)+1:]
}

// Compile-time interface check.
var _ core.Cache = (*ResolverCache)(nil)
