package core

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// VFS owns the resolution pipeline: a table of mounts and the currently
// installed resolved-handle cache. It replaces process-global state with
// an explicit object; independent VFS instances never share mounts or
// cache entries.
//
// A VFS is safe for concurrent use.
type VFS struct {
	mu     sync.RWMutex
	mounts map[string]*Mount
	cache  Cache
	log    *slog.Logger
	closed bool
}

// Option configures a VFS.
type Option func(*options)

type options struct {
	cache  Cache
	logger *slog.Logger
}

// WithCache installs the given cache at construction time. Equivalent to
// calling SetCache on the new VFS.
func WithCache(c Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithLogger sets the logger for resolution-pipeline events. Logging is
// disabled by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates an empty VFS.
func New(opts ...Option) *VFS {
	o := &options{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &VFS{
		mounts: make(map[string]*Mount),
		cache:  o.cache,
		log:    o.logger,
	}
}

// Mount binds backend at the given virtual path and returns the new
// mount. Mounting over an existing mount path fails with fs.ErrExist.
// The mount is registered with the installed cache, if any.
func (v *VFS) Mount(mountPath string, backend Backend) (*Mount, error) {
	m, err := NewMount(mountPath, backend)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, PathError("mount", m.Path(), ErrClosed)
	}
	if _, ok := v.mounts[m.Path()]; ok {
		return nil, PathError("mount", m.Path(), ErrExist)
	}
	v.mounts[m.Path()] = m
	v.register(v.cache, m)
	v.log.Debug("mounted backend", "path", m.Path(), "kind", backend.Kind().String(), "source", backend.Source(m))
	return m, nil
}

// Unmount detaches the mount at the given virtual path and unregisters it
// from the installed cache. The backend is not closed; handles already
// returned stay usable against the detached mount. Unmounting an unknown
// path fails with fs.ErrNotExist.
func (v *VFS) Unmount(mountPath string) error {
	p := rootedPath(mountPath)

	v.mu.Lock()
	defer v.mu.Unlock()
	m, ok := v.mounts[p]
	if !ok {
		return PathError("unmount", p, ErrNotExist)
	}
	delete(v.mounts, p)
	if v.cache != nil {
		v.cache.Unregister(m)
	}
	v.log.Debug("unmounted backend", "path", p)
	return nil
}

// Mounts returns the current mounts sorted by path.
func (v *VFS) Mounts() []*Mount {
	v.mu.RLock()
	defer v.mu.RUnlock()
	mounts := make([]*Mount, 0, len(v.mounts))
	for _, m := range v.mounts {
		mounts = append(mounts, m)
	}
	sort.Slice(mounts, func(i, j int) bool { return mounts[i].Path() < mounts[j].Path() })
	return mounts
}

// Cache returns the currently installed cache, nil when none is set.
func (v *VFS) Cache() Cache {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cache
}

// SetCache replaces the installed cache. Each mount is registered with
// the new cache; a mount the new cache accepts (or a nil cache, which
// disables caching) is unregistered from the old one. A cache that
// declines registration, such as a delegating wrapper over the old
// cache, leaves the old registrations in place so delegated lookups
// keep resolving. Handles already returned by lookups through the old
// cache remain valid.
func (v *VFS) SetCache(c Cache) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cache == c {
		return
	}
	for _, m := range v.mounts {
		accepted := c == nil
		if c != nil {
			if err := c.Register(m); err != nil {
				v.log.Debug("cache registration declined", "path", m.Path(), "error", err)
			} else {
				accepted = true
			}
		}
		if accepted && v.cache != nil {
			v.cache.Unregister(m)
		}
	}
	v.cache = c
}

// register adds m to cache, logging rather than failing when the cache
// declines. Caller holds v.mu.
func (v *VFS) register(cache Cache, m *Mount) {
	if cache == nil {
		return
	}
	if err := cache.Register(m); err != nil {
		v.log.Debug("cache registration declined", "path", m.Path(), "error", err)
	}
}

// Find resolves the given virtual path to a handle. The installed cache
// is consulted first; on a cache miss the owning mount traverses the
// tree, failing with fs.ErrNotExist at the first unmatched segment. A
// path outside every mount fails with fs.ErrNotExist.
func (v *VFS) Find(p string) (*VirtualFile, error) {
	full := rootedPath(p)

	v.mu.RLock()
	if v.closed {
		v.mu.RUnlock()
		return nil, PathError("find", full, ErrClosed)
	}
	m, rel := v.locate(full)
	cache := v.cache
	v.mu.RUnlock()

	if m == nil {
		return nil, PathError("find", full, ErrNotExist)
	}

	if cache != nil {
		f, err := cache.Lookup("vfs:" + full)
		switch {
		case err == nil:
			return f, nil
		case errors.Is(err, ErrCacheStopped):
			// A stopped cache cannot serve; resolve directly.
			v.log.Debug("cache unavailable, resolving directly", "path", full)
		default:
			return nil, err
		}
	}

	return m.Find(rel)
}

// locate returns the mount with the longest path prefix of full and the
// remaining relative path. Caller holds v.mu.
func (v *VFS) locate(full string) (*Mount, string) {
	var best *Mount
	for _, m := range v.mounts {
		if !underMount(full, m.Path()) {
			continue
		}
		if best == nil || len(m.Path()) > len(best.Path()) {
			best = m
		}
	}
	if best == nil {
		return nil, ""
	}
	return best, relativeTo(full, best.Path())
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

// Open resolves the given virtual path and opens a byte stream over its
// content.
func (v *VFS) Open(p string) (io.ReadCloser, error) {
	f, err := v.Find(p)
	if err != nil {
		return nil, err
	}
	return f.Open()
}

// ReadFile resolves the given virtual path and returns its full content.
func (v *VFS) ReadFile(p string) ([]byte, error) {
	r, err := v.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

// Close stops the installed cache, closes every mounted backend, and
// empties the mount table. Close is idempotent; the first error
// encountered does not stop the remaining backends from closing.
func (v *VFS) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true

	if v.cache != nil {
		for _, m := range v.mounts {
			v.cache.Unregister(m)
		}
		v.cache.Stop()
		v.cache = nil
	}

	var errs []error
	for _, m := range v.mounts {
		if err := m.backend.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	v.mounts = make(map[string]*Mount)
	return errors.Join(errs...)
}

// Identifier returns the canonical identifier for a virtual path without
// resolving it, useful for probing a cache directly.
func Identifier(p string) string {
	return "vfs:" + rootedPath(p)
}
