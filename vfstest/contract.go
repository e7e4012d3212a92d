package vfstest

import (
	"errors"
	"io"
	"io/fs"
	"slices"
	"testing"

	"github.com/jmgilman/go/vfs/core"
)

// testRootResolve verifies that a target equal to the mount point
// resolves to the backend's own root resource.
func testRootResolve(t *testing.T, m *core.Mount) {
	native, ok := m.Root().Resolve()
	if !ok {
		t.Fatalf("Resolve(root): got absent, want present")
	}
	if native != m.Source() {
		t.Errorf("Resolve(root): got %q, want mount source %q", native, m.Source())
	}
}

// testRootKind verifies the mount root reads as an existing directory.
func testRootKind(t *testing.T, m *core.Mount) {
	root := m.Root()
	if !root.Exists() {
		t.Errorf("Exists(root): got false, want true")
	}
	if !root.IsDir() {
		t.Errorf("IsDir(root): got false, want true")
	}
	if root.IsLeaf() {
		t.Errorf("IsLeaf(root): got true, want false")
	}
}

// testOpenLeaf verifies content and metadata of a seeded leaf.
func testOpenLeaf(t *testing.T, m *core.Mount) {
	f, err := m.Find("a.txt")
	if err != nil {
		t.Fatalf("Find(a.txt): got error %v, want nil", err)
	}
	if !f.Exists() {
		t.Errorf("Exists(a.txt): got false, want true")
	}
	if !f.IsLeaf() {
		t.Errorf("IsLeaf(a.txt): got false, want true")
	}
	if f.IsDir() {
		t.Errorf("IsDir(a.txt): got true, want false")
	}
	if got, want := f.Size(), int64(len(seedContent)); got != want {
		t.Errorf("Size(a.txt): got %d, want %d", got, want)
	}

	r, err := f.Open()
	if err != nil {
		t.Fatalf("Open(a.txt): got error %v, want nil", err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil {
			t.Errorf("Close(): got error %v", closeErr)
		}
	}()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll(a.txt): got error %v, want nil", err)
	}
	if string(data) != seedContent {
		t.Errorf("ReadAll(a.txt): got %q, want %q", data, seedContent)
	}
}

// testOpenMissing verifies that opening a stream is the one operation
// that fails for a missing target.
func testOpenMissing(t *testing.T, m *core.Mount) {
	f, err := m.Handle("missing.txt")
	if err != nil {
		t.Fatalf("Handle(missing.txt): got error %v, want nil", err)
	}
	r, err := f.Open()
	if err == nil {
		_ = r.Close()
		t.Fatalf("Open(missing.txt): got nil error, want fs.ErrNotExist")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open(missing.txt): got %v, want fs.ErrNotExist", err)
	}
}

// testListDir verifies directory listings at the root and one level
// down. Entry order is backend-specific, so listings compare sorted.
func testListDir(t *testing.T, m *core.Mount) {
	got := m.Root().List()
	slices.Sort(got)
	if want := []string{"a.txt", "dir"}; !slices.Equal(got, want) {
		t.Errorf("List(root): got %v, want %v", got, want)
	}

	d, err := m.Find("dir")
	if err != nil {
		t.Fatalf("Find(dir): got error %v, want nil", err)
	}
	got = d.List()
	slices.Sort(got)
	if want := []string{"nested.txt", "sub"}; !slices.Equal(got, want) {
		t.Errorf("List(dir): got %v, want %v", got, want)
	}
}

// testListNeutral verifies listing an absent or non-directory target
// returns an empty sequence rather than failing.
func testListNeutral(t *testing.T, m *core.Mount) {
	missing, err := m.Handle("no/such/dir")
	if err != nil {
		t.Fatalf("Handle(no/such/dir): got error %v, want nil", err)
	}
	if got := missing.List(); len(got) != 0 {
		t.Errorf("List(absent): got %v, want empty", got)
	}

	leaf, err := m.Find("a.txt")
	if err != nil {
		t.Fatalf("Find(a.txt): got error %v, want nil", err)
	}
	if got := leaf.List(); len(got) != 0 {
		t.Errorf("List(leaf): got %v, want empty", got)
	}
}

// testMetadataNeutral verifies every metadata query reports neutral
// absence for a missing target.
func testMetadataNeutral(t *testing.T, m *core.Mount) {
	f, err := m.Handle("missing.txt")
	if err != nil {
		t.Fatalf("Handle(missing.txt): got error %v, want nil", err)
	}
	if f.Exists() {
		t.Errorf("Exists(missing): got true, want false")
	}
	if f.IsLeaf() {
		t.Errorf("IsLeaf(missing): got true, want false")
	}
	if f.IsDir() {
		t.Errorf("IsDir(missing): got true, want false")
	}
	if got := f.Size(); got != 0 {
		t.Errorf("Size(missing): got %d, want 0", got)
	}
	if got := f.ModTime(); !got.IsZero() {
		t.Errorf("ModTime(missing): got %v, want zero time", got)
	}
}

// testFindMissing verifies structured traversal fails with
// fs.ErrNotExist at the first unmatched segment.
func testFindMissing(t *testing.T, m *core.Mount) {
	if _, err := m.Find("missing.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Find(missing.txt): got %v, want fs.ErrNotExist", err)
	}
	if _, err := m.Find("dir/gone/deeper.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Find(dir/gone/deeper.txt): got %v, want fs.ErrNotExist", err)
	}
}

// testResolve verifies native resolution below the mount point per the
// backend's capability.
func testResolve(t *testing.T, m *core.Mount, config Config) {
	f, err := m.Find("a.txt")
	if err != nil {
		t.Fatalf("Find(a.txt): got error %v, want nil", err)
	}
	native, ok := f.Resolve()
	if config.NativeResolve {
		if !ok {
			t.Fatalf("Resolve(a.txt): got absent, want native handle")
		}
		if native == "" {
			t.Errorf("Resolve(a.txt): got empty native handle")
		}
	} else if ok {
		t.Errorf("Resolve(a.txt): got %q, want absent", native)
	}
}

// testRemove verifies deletion per the backend's capability. Removal is
// best-effort either way: a missing target reports false, never an
// error.
func testRemove(t *testing.T, m *core.Mount, config Config) {
	f, err := m.Find("a.txt")
	if err != nil {
		t.Fatalf("Find(a.txt): got error %v, want nil", err)
	}

	if config.Writable {
		if !f.Remove() {
			t.Fatalf("Remove(a.txt): got false, want true")
		}
		if f.Exists() {
			t.Errorf("Exists(a.txt) after remove: got true, want false")
		}
	} else {
		if f.Remove() {
			t.Fatalf("Remove(a.txt): got true on read-only backend, want false")
		}
		if !f.Exists() {
			t.Errorf("Exists(a.txt) after failed remove: got false, want true")
		}
	}

	missing, err := m.Handle("missing.txt")
	if err != nil {
		t.Fatalf("Handle(missing.txt): got error %v, want nil", err)
	}
	if missing.Remove() {
		t.Errorf("Remove(missing): got true, want false")
	}
}

// testReadOnlyFlag verifies the static capability flag matches the
// configured writability.
func testReadOnlyFlag(t *testing.T, m *core.Mount, config Config) {
	if got, want := m.Backend().ReadOnly(), !config.Writable; got != want {
		t.Errorf("ReadOnly(): got %v, want %v", got, want)
	}
}

// testCloseIdempotent verifies repeated closes do not fail.
func testCloseIdempotent(t *testing.T, m *core.Mount) {
	if err := m.Backend().Close(); err != nil {
		t.Fatalf("Close(): got error %v, want nil", err)
	}
	if err := m.Backend().Close(); err != nil {
		t.Errorf("Close() again: got error %v, want nil", err)
	}
}
