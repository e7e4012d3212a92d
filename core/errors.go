package core

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotExist is returned when a virtual file does not exist.
	// Re-exported from io/fs for convenience.
	ErrNotExist = fs.ErrNotExist

	// ErrExist is returned when a virtual file or mount already exists.
	// Re-exported from io/fs for convenience.
	ErrExist = fs.ErrExist

	// ErrClosed is returned when an operation is performed on a closed VFS.
	// Re-exported from io/fs for convenience.
	ErrClosed = fs.ErrClosed

	// ErrInvalid is returned when a path or name is malformed.
	// Re-exported from io/fs for convenience.
	ErrInvalid = fs.ErrInvalid

	// ErrInvariant indicates a structural rule of the virtual tree was
	// violated, such as assigning content to a node that owns children.
	// It signals a programming error by the caller, not a transient
	// condition, and is never worth retrying.
	ErrInvariant = errors.New("tree invariant violated")

	// ErrDuplicateContext indicates a mount was registered with a cache
	// that already tracks it. Re-registration usually points at a caller
	// bug, so it is reported rather than ignored.
	ErrDuplicateContext = errors.New("context already registered")

	// ErrRegistrationClosed indicates a cache does not accept context
	// registration because the cache it delegates to already owns it.
	ErrRegistrationClosed = errors.New("context registration not accepted")

	// ErrCacheStopped indicates a cache operation was attempted outside
	// the started state.
	ErrCacheStopped = errors.New("cache not started")
)

// PathError wraps an error in a fs.PathError for the given operation and
// virtual path. If the error is nil, returns nil.
func PathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// PathErrorf creates a fs.PathError with a formatted error message.
func PathErrorf(op, path, format string, args ...interface{}) error {
	return &fs.PathError{Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}
