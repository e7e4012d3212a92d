package core

import (
	"io"
	"time"

	"github.com/jmgilman/go/vfs/internal/pathutil"
)

// VirtualFile is one addressable entry in a virtual tree. Handles are
// created on first resolution of a path under a mount and deduplicated:
// resolving the same path through the same mount yields the same pointer.
//
// The parent link is a plain back-reference for traversal; ownership of
// handles rests with the mount. A handle's identity (name, parent, mount)
// is immutable once created. Holding a handle never implies the underlying
// resource exists; query methods answer that at call time.
type VirtualFile struct {
	name   string
	rel    string
	parent *VirtualFile
	mount  *Mount
}

// Name returns the handle's final path segment. The mount root reports the
// base of the mount path, or "/" for a root mount.
func (f *VirtualFile) Name() string {
	return f.name
}

// Parent returns the handle one level up, or nil at the mount root.
func (f *VirtualFile) Parent() *VirtualFile {
	return f.parent
}

// Mount returns the mount this handle was resolved under.
func (f *VirtualFile) Mount() *Mount {
	return f.mount
}

// RelativePath returns the slash path of the handle relative to its mount
// point. The mount root returns "".
func (f *VirtualFile) RelativePath() string {
	return f.rel
}

// Path returns the full virtual path, including the mount point.
func (f *VirtualFile) Path() string {
	mp := f.mount.Path()
	if f.rel == "" {
		return mp
	}
	if mp == "/" {
		return "/" + f.rel
	}
	return mp + "/" + f.rel
}

// String returns the canonical identifier for the handle, a scheme-
// qualified form of Path used as the cache key.
func (f *VirtualFile) String() string {
	return "vfs:" + f.Path()
}

// Child returns the handle for the named entry below f. The name must be a
// single path segment. The handle is created even when no such resource
// exists; use Exists or Mount.Find for checked resolution.
func (f *VirtualFile) Child(name string) (*VirtualFile, error) {
	if !pathutil.ValidName(name) {
		return nil, PathError("child", f.Path(), ErrInvalid)
	}
	return f.mount.handle(f, name), nil
}

// Exists reports whether the handle maps to existing data.
func (f *VirtualFile) Exists() bool {
	return f.mount.backend.Exists(f.mount, f)
}

// IsLeaf reports whether the handle is a content-bearing file.
func (f *VirtualFile) IsLeaf() bool {
	return f.mount.backend.IsLeaf(f.mount, f)
}

// IsDir reports whether the handle is a directory.
func (f *VirtualFile) IsDir() bool {
	return f.mount.backend.IsDir(f.mount, f)
}

// Size returns the content size in bytes, 0 when absent.
func (f *VirtualFile) Size() int64 {
	return f.mount.backend.Size(f.mount, f)
}

// ModTime returns the last modification time, the zero time when absent.
func (f *VirtualFile) ModTime() time.Time {
	return f.mount.backend.ModTime(f.mount, f)
}

// Open opens a byte stream over the handle's content. It fails with
// fs.ErrNotExist when the resource is absent.
func (f *VirtualFile) Open() (io.ReadCloser, error) {
	return f.mount.backend.Open(f.mount, f)
}

// List returns the names of the handle's children, empty when the handle
// is absent or not a directory.
func (f *VirtualFile) List() []string {
	return f.mount.backend.List(f.mount, f)
}

// Children returns handles for the entries below f, in the backend's
// listing order.
func (f *VirtualFile) Children() []*VirtualFile {
	names := f.List()
	if len(names) == 0 {
		return nil
	}
	children := make([]*VirtualFile, 0, len(names))
	for _, name := range names {
		if !pathutil.ValidName(name) {
			continue
		}
		children = append(children, f.mount.handle(f, name))
	}
	return children
}

// Remove deletes the underlying resource, best-effort. It returns false
// when the resource is absent or deletion fails.
func (f *VirtualFile) Remove() bool {
	return f.mount.backend.Remove(f.mount, f)
}

// Resolve translates the handle into the backend's native representation.
// The second return is false when there is none.
func (f *VirtualFile) Resolve() (string, bool) {
	return f.mount.backend.Resolve(f.mount, f)
}

// Signers returns code-signing metadata, nil when the backend has none.
func (f *VirtualFile) Signers() []Signer {
	return f.mount.backend.Signers(f.mount, f)
}
