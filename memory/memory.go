// Package memory provides an in-process synthetic tree backend. Content
// lives only in process memory; nothing is persisted.
package memory

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/internal/pathutil"
)

// Source is the native-handle placeholder reported for memory trees,
// which have no representation outside the process.
const Source = ":memory:"

// Backend is an in-memory tree of named nodes, each either a directory or
// a content-bearing leaf. A node with no content reads as a valid empty
// stream rather than an error.
//
// Reads may run concurrently; structural mutation (WriteFile, MkdirAll,
// Remove) requires external synchronization by the caller.
type Backend struct {
	root *entry
	log  *slog.Logger
}

// Option configures a memory backend.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for tree mutations. Logging is disabled by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a backend holding an empty root directory.
func New(opts ...Option) *Backend {
	o := &options{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Backend{
		root: &entry{modTime: time.Now()},
		log:  o.logger,
	}
}

// lookup resolves a mount-relative slash path to a tree node, nil when
// any segment is unmatched.
func (b *Backend) lookup(rel string) *entry {
	e := b.root
	for _, seg := range pathutil.Split(rel) {
		e = e.child(seg)
		if e == nil {
			return nil
		}
	}
	return e
}

// Open opens a stream over the target's content. A present node without
// content yields an empty stream; an absent node fails with
// fs.ErrNotExist.
func (b *Backend) Open(m *core.Mount, target *core.VirtualFile) (io.ReadCloser, error) {
	e := b.lookup(target.RelativePath())
	if e == nil {
		return nil, core.PathError("open", target.Path(), core.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(e.content)), nil
}

// ReadOnly reports false: memory trees accept mutation.
func (b *Backend) ReadOnly() bool {
	return false
}

// Resolve reports the mount source for the root and no native
// representation for anything below it.
func (b *Backend) Resolve(m *core.Mount, target *core.VirtualFile) (string, bool) {
	if target.RelativePath() == "" {
		return Source, true
	}
	return "", false
}

// Remove detaches the target from its parent. Removal requires both the
// name mapping and the child sequence to drop the node; the root cannot
// be removed.
func (b *Backend) Remove(m *core.Mount, target *core.VirtualFile) bool {
	rel := target.RelativePath()
	e := b.lookup(rel)
	if e == nil || e.parent == nil {
		return false
	}
	ok := e.parent.removeChild(e)
	if ok {
		b.log.Debug("removed node", "path", rel)
	}
	return ok
}

// Size returns the content length, 0 for directories and absent targets.
func (b *Backend) Size(m *core.Mount, target *core.VirtualFile) int64 {
	e := b.lookup(target.RelativePath())
	if e == nil {
		return 0
	}
	return int64(len(e.content))
}

// ModTime returns the node's modification time, the zero time when
// absent.
func (b *Backend) ModTime(m *core.Mount, target *core.VirtualFile) time.Time {
	e := b.lookup(target.RelativePath())
	if e == nil {
		return time.Time{}
	}
	return e.modTime
}

// Exists reports whether the target names a node in the tree.
func (b *Backend) Exists(m *core.Mount, target *core.VirtualFile) bool {
	return b.lookup(target.RelativePath()) != nil
}

// IsLeaf reports whether the target is a content-bearing node.
func (b *Backend) IsLeaf(m *core.Mount, target *core.VirtualFile) bool {
	e := b.lookup(target.RelativePath())
	return e != nil && e.isLeaf()
}

// IsDir reports whether the target is a directory node.
func (b *Backend) IsDir(m *core.Mount, target *core.VirtualFile) bool {
	e := b.lookup(target.RelativePath())
	return e != nil && !e.isLeaf()
}

// List returns child names in insertion order, empty when the target is
// absent or a leaf.
func (b *Backend) List(m *core.Mount, target *core.VirtualFile) []string {
	e := b.lookup(target.RelativePath())
	if e == nil {
		return nil
	}
	return e.names()
}

// Signers returns nil: memory trees carry no signing metadata.
func (b *Backend) Signers(m *core.Mount, target *core.VirtualFile) []core.Signer {
	return nil
}

// Source returns the ":memory:" placeholder.
func (b *Backend) Source(m *core.Mount) string {
	return Source
}

// Kind reports KindMemory.
func (b *Backend) Kind() core.Kind {
	return core.KindMemory
}

// Close is a no-op: memory trees hold no closable state.
func (b *Backend) Close() error {
	return nil
}

// WriteFile stores data as a leaf at the given slash path, creating
// parent directories as needed. Writing to a node that owns children
// fails with core.ErrInvariant; writing below a leaf fails because the
// leaf is not a directory.
func (b *Backend) WriteFile(p string, data []byte) error {
	segs := pathutil.Split(p)
	if len(segs) == 0 {
		return core.PathError("write", p, core.ErrInvalid)
	}

	e, err := b.mkdirs("write", p, segs[:len(segs)-1])
	if err != nil {
		return err
	}

	name := segs[len(segs)-1]
	leaf := e.child(name)
	if leaf == nil {
		leaf, err = e.newChild(name)
		if err != nil {
			return core.PathError("write", p, err)
		}
	}
	if err := leaf.setContent(data); err != nil {
		return core.PathError("write", p, err)
	}
	b.log.Debug("wrote leaf", "path", p, "size", len(data))
	return nil
}

// MkdirAll creates a directory chain at the given slash path. Existing
// directories along the chain are reused; a leaf in the chain fails the
// call.
func (b *Backend) MkdirAll(p string) error {
	_, err := b.mkdirs("mkdir", p, pathutil.Split(p))
	return err
}

// mkdirs walks segs below the root, creating missing directory nodes.
func (b *Backend) mkdirs(op, p string, segs []string) (*entry, error) {
	e := b.root
	for _, seg := range segs {
		next := e.child(seg)
		if next == nil {
			var err error
			next, err = e.newChild(seg)
			if err != nil {
				return nil, core.PathError(op, p, err)
			}
		} else if next.isLeaf() {
			return nil, core.PathErrorf(op, p, "%q is not a directory", seg)
		}
		e = next
	}
	return e, nil
}

// FromFS bulk-loads the tree from a read-only filesystem, preserving the
// directory structure. Useful for seeding a memory mount from embed.FS or
// testing/fstest trees.
func (b *Backend) FromFS(src fs.FS) error {
	return fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if d.IsDir() {
			return b.MkdirAll(p)
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		return b.WriteFile(p, data)
	})
}

// Compile-time interface check.
var _ core.Backend = (*Backend)(nil)
