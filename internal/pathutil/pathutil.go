// Package pathutil provides normalization and manipulation helpers for
// virtual slash-separated paths.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Normalize cleans a virtual path and ensures forward slashes.
// It applies: ToSlash → Clean → Trim slashes.
// Returns "." for empty paths and for the root.
func Normalize(path string) string {
	if path == "" {
		return "."
	}

	// Convert backslashes to forward slashes (for Windows-style paths)
	path = strings.ReplaceAll(path, "\\", "/")

	// Clean the path (resolves . and ..)
	path = filepath.Clean(path)

	// Convert to forward slashes again (filepath.Clean may use OS separator)
	path = filepath.ToSlash(path)

	// Trim leading and trailing slashes
	path = strings.Trim(path, "/")

	// Return "." if path is now empty
	if path == "" {
		return "."
	}

	return path
}

// Split normalizes a virtual path and returns its segments in order.
// The root path ("", "/", ".") yields nil.
func Split(path string) []string {
	path = Normalize(path)
	if path == "." {
		return nil
	}
	return strings.Split(path, "/")
}

// Join joins a normalized prefix with a name to form a longer relative path.
// An empty prefix yields the name unchanged.
func Join(prefix, name string) string {
	name = Normalize(name)

	if name == "." {
		return prefix
	}

	if prefix == "" {
		return name
	}

	return prefix + "/" + name
}

// ValidName reports whether name is usable as a single path segment.
// Separators, the empty string, and the dot entries are rejected.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}
