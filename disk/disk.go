// Package disk provides a backend mapping virtual paths onto a real
// directory tree.
//
// Metadata queries are best-effort: any native I/O failure, including the
// path not existing, reports the target absent rather than failing the
// call. Opening a stream is the one operation that surfaces errors,
// because callers need a reason to report.
package disk

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmgilman/go/vfs/core"
)

// Backend maps a mount's subtree onto a native directory.
type Backend struct {
	root      string // absolute native root
	caseCheck bool
	log       *slog.Logger
}

// Option configures a disk backend.
type Option func(*options)

type options struct {
	caseCheck bool
	logger    *slog.Logger
}

// WithStrictCase enables strict case verification. Many native
// filesystems are case-insensitive, which lets a virtual path with wrong
// letter-casing silently resolve; with this option every path segment
// must match the stored name byte for byte or the target is reported
// absent.
func WithStrictCase() Option {
	return func(o *options) {
		o.caseCheck = true
	}
}

// WithLogger sets the logger for backend events. Logging is disabled by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a backend rooted at the given native directory. The root is
// resolved to an absolute path; it does not need to exist yet.
func New(root string, opts ...Option) (*Backend, error) {
	o := &options{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("disk backend root %q: %w", root, err)
	}
	b := &Backend{
		root:      abs,
		caseCheck: o.caseCheck,
		log:       o.logger,
	}
	b.log.Debug("constructed disk backend", "root", abs, "strict_case", o.caseCheck)
	return b, nil
}

// resolve translates the target into a native path. A target equal to the
// mount point returns the native root directly, with no translation and
// no case verification. Otherwise the mount-relative remainder is joined
// onto the root, converting separators only when the host separator
// differs from '/'.
func (b *Backend) resolve(m *core.Mount, target *core.VirtualFile) (string, bool) {
	rel := target.RelativePath()
	if rel == "" {
		return b.root, true
	}
	candidate := filepath.Join(b.root, filepath.FromSlash(rel))
	if b.caseCheck && !b.verifyCase(m, target, candidate) {
		return "", false
	}
	return candidate, true
}

// Open opens the target's native file for reading. Resolution failures
// report fs.ErrNotExist; errors from the native open are surfaced
// verbatim.
func (b *Backend) Open(m *core.Mount, target *core.VirtualFile) (io.ReadCloser, error) {
	p, ok := b.resolve(m, target)
	if !ok {
		return nil, core.PathError("open", target.Path(), core.ErrNotExist)
	}
	return os.Open(p)
}

// ReadOnly reports false: disk trees accept mutation.
func (b *Backend) ReadOnly() bool {
	return false
}

// Resolve translates the target into its native path. The second return
// is false when resolution fails, including a failed case verification.
func (b *Backend) Resolve(m *core.Mount, target *core.VirtualFile) (string, bool) {
	return b.resolve(m, target)
}

// Remove deletes the target's native file, best-effort.
func (b *Backend) Remove(m *core.Mount, target *core.VirtualFile) bool {
	p, ok := b.resolve(m, target)
	if !ok {
		return false
	}
	return os.Remove(p) == nil
}

// Size returns the native file size, 0 when absent.
func (b *Backend) Size(m *core.Mount, target *core.VirtualFile) int64 {
	fi, ok := b.stat(m, target)
	if !ok {
		return 0
	}
	return fi.Size()
}

// ModTime returns the native modification time, the zero time when
// absent.
func (b *Backend) ModTime(m *core.Mount, target *core.VirtualFile) time.Time {
	fi, ok := b.stat(m, target)
	if !ok {
		return time.Time{}
	}
	return fi.ModTime()
}

// Exists reports whether the target maps to an existing native file.
func (b *Backend) Exists(m *core.Mount, target *core.VirtualFile) bool {
	_, ok := b.stat(m, target)
	return ok
}

// IsLeaf reports whether the target is a regular native file.
func (b *Backend) IsLeaf(m *core.Mount, target *core.VirtualFile) bool {
	fi, ok := b.stat(m, target)
	return ok && fi.Mode().IsRegular()
}

// IsDir reports whether the target is a native directory.
func (b *Backend) IsDir(m *core.Mount, target *core.VirtualFile) bool {
	fi, ok := b.stat(m, target)
	return ok && fi.IsDir()
}

// List returns the native directory's entry names, empty when the target
// is absent or not a directory.
func (b *Backend) List(m *core.Mount, target *core.VirtualFile) []string {
	p, ok := b.resolve(m, target)
	if !ok {
		return nil
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

// Signers returns nil: the disk backend carries no signing metadata.
func (b *Backend) Signers(m *core.Mount, target *core.VirtualFile) []core.Signer {
	return nil
}

// Source returns the native root directory.
func (b *Backend) Source(m *core.Mount) string {
	return b.root
}

// Kind reports KindDisk.
func (b *Backend) Kind() core.Kind {
	return core.KindDisk
}

// Close is a no-op: the native filesystem cannot be closed.
func (b *Backend) Close() error {
	return nil
}

// stat resolves and stats the target, folding every failure into absence.
func (b *Backend) stat(m *core.Mount, target *core.VirtualFile) (os.FileInfo, bool) {
	p, ok := b.resolve(m, target)
	if !ok {
		return nil, false
	}
	fi, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	return fi, true
}

// Compile-time interface check.
var _ core.Backend = (*Backend)(nil)
