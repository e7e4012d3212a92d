package core

import (
	"io"
	"time"
)

// Kind identifies the storage class of a backend implementation.
type Kind int

const (
	// KindUnknown indicates the backend kind is unknown or unspecified.
	KindUnknown Kind = iota
	// KindDisk indicates a backend mapping onto a real directory tree.
	KindDisk
	// KindMemory indicates an in-process synthetic tree.
	KindMemory
	// KindBundle indicates a packaged single-file tree.
	KindBundle
	// KindAdapter indicates a backend delegating to a foreign filesystem
	// abstraction.
	KindAdapter
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindDisk:
		return "disk"
	case KindMemory:
		return "memory"
	case KindBundle:
		return "bundle"
	case KindAdapter:
		return "adapter"
	default:
		return "unknown"
	}
}

// Signer identifies a party attesting to a file's content. Backends
// without signing metadata return nil from Signers.
type Signer struct {
	// Name is the signer's identity, typically a certificate subject.
	Name string
	// Fingerprint is an opaque digest of the signing key, if known.
	Fingerprint string
}

// Backend is the capability set every storage backend implements.
//
// Methods addressing a node take the owning mount and a target handle that
// lies within the mount's subtree. A target whose path equals the mount
// point always resolves to the backend's own root resource.
//
// Absence is never an error for query methods: they return a neutral value
// (false, zero, empty, nil) when the target does not map to existing data.
// Open is the one data-access method and fails with fs.ErrNotExist so the
// caller has a reason to report. Backends do not retry internally.
type Backend interface {
	// Open opens a byte stream over the target's content.
	// It fails with an error satisfying errors.Is(err, fs.ErrNotExist)
	// when the target does not map to existing data; other I/O failures
	// are surfaced verbatim.
	Open(m *Mount, target *VirtualFile) (io.ReadCloser, error)

	// ReadOnly reports whether the backend rejects mutation. The flag is
	// static per backend instance.
	ReadOnly() bool

	// Resolve translates the target into the backend's native
	// representation, typically an absolute host path. The second return
	// is false when the target has no native representation or does not
	// exist; that is an answer, not an error.
	Resolve(m *Mount, target *VirtualFile) (string, bool)

	// Remove deletes the target, best-effort. It returns false when the
	// target is absent, the backend is read-only, or deletion fails.
	Remove(m *Mount, target *VirtualFile) bool

	// Size returns the target's content size in bytes, 0 when absent or
	// when the target is a directory without a meaningful size.
	Size(m *Mount, target *VirtualFile) int64

	// ModTime returns the target's last modification time, the zero time
	// when absent.
	ModTime(m *Mount, target *VirtualFile) time.Time

	// Exists reports whether the target maps to existing data.
	Exists(m *Mount, target *VirtualFile) bool

	// IsLeaf reports whether the target is a content-bearing file.
	IsLeaf(m *Mount, target *VirtualFile) bool

	// IsDir reports whether the target is a directory.
	IsDir(m *Mount, target *VirtualFile) bool

	// List returns the names of the target's children. It returns an
	// empty slice when the target is absent or not a directory, never an
	// error.
	List(m *Mount, target *VirtualFile) []string

	// Signers returns code-signing metadata for the target, nil when the
	// backend has none.
	Signers(m *Mount, target *VirtualFile) []Signer

	// Source describes the backend's own root resource, such as the
	// native root directory or the bundle file path.
	Source(m *Mount) string

	// Kind reports the backend's storage class.
	Kind() Kind

	// Close releases backend-held resources. It is idempotent, and a
	// no-op is valid for backends with no closable state.
	Close() error
}
