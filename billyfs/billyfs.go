// Package billyfs adapts a go-billy filesystem into a virtual-filesystem
// backend. The adapter is read-surface only; callers that need to write
// reach the underlying billy.Filesystem through Unwrap, which also
// allows handing the filesystem to go-git APIs.
package billyfs

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jmgilman/go/vfs/core"
)

// Backend maps a mount's subtree onto a billy.Filesystem.
type Backend struct {
	bfs billy.Filesystem
	log *slog.Logger
}

// Option configures a billy backend.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for backend events. Logging is disabled by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New wraps an existing billy.Filesystem.
func New(bfs billy.Filesystem, opts ...Option) *Backend {
	o := &options{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Backend{bfs: bfs, log: o.logger}
}

// NewMemory creates a backend over a fresh in-memory billy filesystem.
func NewMemory(opts ...Option) *Backend {
	return New(memfs.New(), opts...)
}

// NewLocal creates a backend over the local filesystem rooted at the
// given directory.
func NewLocal(root string, opts ...Option) *Backend {
	return New(osfs.New(root), opts...)
}

// Unwrap returns the underlying billy.Filesystem.
func (b *Backend) Unwrap() billy.Filesystem {
	return b.bfs
}

// nativePath translates the mount-relative remainder into a billy path.
// Billy resolves slash-relative paths against its own root, so the only
// translation needed is naming the root itself.
func nativePath(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}

// Open opens the target for reading. A missing target fails with
// fs.ErrNotExist; other errors from the filesystem are surfaced
// verbatim.
func (b *Backend) Open(m *core.Mount, target *core.VirtualFile) (io.ReadCloser, error) {
	f, err := b.bfs.Open(nativePath(target.RelativePath()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.PathError("open", target.Path(), core.ErrNotExist)
		}
		return nil, err
	}
	return f, nil
}

// ReadOnly reports false: billy filesystems accept mutation through
// Unwrap.
func (b *Backend) ReadOnly() bool {
	return false
}

// Resolve reports the filesystem root for the mount point itself. Other
// targets have no native representation the adapter can vouch for: an
// in-memory billy filesystem fabricates its paths.
func (b *Backend) Resolve(m *core.Mount, target *core.VirtualFile) (string, bool) {
	if target.RelativePath() == "" {
		return b.Source(m), true
	}
	return "", false
}

// Remove deletes the target, best-effort.
func (b *Backend) Remove(m *core.Mount, target *core.VirtualFile) bool {
	rel := target.RelativePath()
	if rel == "" {
		return false
	}
	return b.bfs.Remove(rel) == nil
}

// Size returns the target's size, 0 when absent.
func (b *Backend) Size(m *core.Mount, target *core.VirtualFile) int64 {
	fi, ok := b.stat(target)
	if !ok {
		return 0
	}
	return fi.Size()
}

// ModTime returns the target's modification time, the zero time when
// absent.
func (b *Backend) ModTime(m *core.Mount, target *core.VirtualFile) time.Time {
	fi, ok := b.stat(target)
	if !ok {
		return time.Time{}
	}
	return fi.ModTime()
}

// Exists reports whether the target exists. The mount root always
// exists, even over an empty filesystem.
func (b *Backend) Exists(m *core.Mount, target *core.VirtualFile) bool {
	if target.RelativePath() == "" {
		return true
	}
	_, ok := b.stat(target)
	return ok
}

// IsLeaf reports whether the target is a regular file.
func (b *Backend) IsLeaf(m *core.Mount, target *core.VirtualFile) bool {
	if target.RelativePath() == "" {
		return false
	}
	fi, ok := b.stat(target)
	return ok && fi.Mode().IsRegular()
}

// IsDir reports whether the target is a directory. The mount root is
// always a directory.
func (b *Backend) IsDir(m *core.Mount, target *core.VirtualFile) bool {
	if target.RelativePath() == "" {
		return true
	}
	fi, ok := b.stat(target)
	return ok && fi.IsDir()
}

// List returns the target directory's entry names, empty when the target
// is absent or not a directory.
func (b *Backend) List(m *core.Mount, target *core.VirtualFile) []string {
	infos, err := b.bfs.ReadDir(nativePath(target.RelativePath()))
	if err != nil {
		return nil
	}
	names := make([]string, len(infos))
	for i, fi := range infos {
		names[i] = fi.Name()
	}
	return names
}

// Signers returns nil: billy filesystems carry no signing metadata.
func (b *Backend) Signers(m *core.Mount, target *core.VirtualFile) []core.Signer {
	return nil
}

// Source returns the billy filesystem's root path.
func (b *Backend) Source(m *core.Mount) string {
	return b.bfs.Root()
}

// Kind reports KindAdapter.
func (b *Backend) Kind() core.Kind {
	return core.KindAdapter
}

// Close is a no-op: billy filesystems hold no closable state.
func (b *Backend) Close() error {
	return nil
}

func (b *Backend) stat(target *core.VirtualFile) (os.FileInfo, bool) {
	fi, err := b.bfs.Stat(nativePath(target.RelativePath()))
	if err != nil {
		return nil, false
	}
	return fi, true
}

// Compile-time interface check.
var _ core.Backend = (*Backend)(nil)
