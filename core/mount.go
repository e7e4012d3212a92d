package core

import (
	"fmt"
	"path"
	"sync"

	"github.com/jmgilman/go/vfs/internal/pathutil"
)

// Mount binds one backend to one virtual mount point. It owns the handle
// table for its subtree: resolving a relative path through the mount
// always returns the same *VirtualFile for the same path. Handles name
// positions, not live resources, so removing a file does not invalidate
// its handle; the table lives until the mount is discarded.
//
// A mount is safe for concurrent use.
type Mount struct {
	path    string
	backend Backend

	mu      sync.Mutex
	root    *VirtualFile
	handles map[string]*VirtualFile // relative path → handle, nil until first child
}

// NewMount binds backend to the given virtual mount path. The path is
// normalized to a rooted slash path ("/" mounts at the top).
func NewMount(mountPath string, backend Backend) (*Mount, error) {
	if backend == nil {
		return nil, fmt.Errorf("mount %q: nil backend", mountPath)
	}
	m := &Mount{
		path:    rootedPath(mountPath),
		backend: backend,
	}
	name := path.Base(m.path)
	m.root = &VirtualFile{name: name, mount: m}
	return m, nil
}

// rootedPath normalizes p into a "/"-rooted virtual path.
func rootedPath(p string) string {
	norm := pathutil.Normalize(p)
	if norm == "." {
		return "/"
	}
	return "/" + norm
}

// Path returns the normalized virtual mount path.
func (m *Mount) Path() string {
	return m.path
}

// Backend returns the storage backend bound to the mount.
func (m *Mount) Backend() Backend {
	return m.backend
}

// Root returns the handle for the mount point itself. It always resolves
// to the backend's root resource without path translation.
func (m *Mount) Root() *VirtualFile {
	return m.root
}

// Source describes the backend's root resource.
func (m *Mount) Source() string {
	return m.backend.Source(m)
}

// handle returns the deduplicated child handle for name below parent,
// creating it on first use. The handle table is allocated lazily so a
// mount with an untouched subtree costs a single root handle.
func (m *Mount) handle(parent *VirtualFile, name string) *VirtualFile {
	rel := pathutil.Join(parent.rel, name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.handles[rel]; ok {
		return f
	}
	f := &VirtualFile{name: name, rel: rel, parent: parent, mount: m}
	if m.handles == nil {
		m.handles = make(map[string]*VirtualFile)
	}
	m.handles[rel] = f
	return f
}

// Handle returns the deduplicated handle for the given mount-relative
// path without checking that the resource exists. The empty path (or ".",
// "/") returns the root handle.
func (m *Mount) Handle(rel string) (*VirtualFile, error) {
	f := m.root
	for _, seg := range pathutil.Split(rel) {
		if !pathutil.ValidName(seg) {
			return nil, PathError("handle", pathutil.Join(m.path, rel), ErrInvalid)
		}
		f = m.handle(f, seg)
	}
	return f, nil
}

// Find resolves the given mount-relative path one segment at a time,
// asking the backend whether each intermediate handle exists. It fails
// with fs.ErrNotExist at the first unmatched segment. The empty path
// resolves to the mount root, which always exists.
func (m *Mount) Find(rel string) (*VirtualFile, error) {
	f := m.root
	for _, seg := range pathutil.Split(rel) {
		if !pathutil.ValidName(seg) {
			return nil, PathError("find", pathutil.Join(m.path, rel), ErrInvalid)
		}
		f = m.handle(f, seg)
		if !m.backend.Exists(m, f) {
			return nil, PathError("find", f.Path(), ErrNotExist)
		}
	}
	return f, nil
}

