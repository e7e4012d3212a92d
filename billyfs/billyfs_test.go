package billyfs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/vfstest"
)

func newMount(t *testing.T, b *Backend) *core.Mount {
	t.Helper()
	m, err := core.NewMount("/", b)
	if err != nil {
		t.Fatalf("NewMount() error = %v", err)
	}
	return m
}

func handle(t *testing.T, m *core.Mount, rel string) *core.VirtualFile {
	t.Helper()
	f, err := m.Handle(rel)
	if err != nil {
		t.Fatalf("Handle(%q) error = %v", rel, err)
	}
	return f
}

func writeFile(t *testing.T, bfs billy.Filesystem, path, content string) {
	t.Helper()
	if err := util.WriteFile(bfs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

// TestMemory_Constructor verifies NewMemory creates a valid backend.
func TestMemory_Constructor(t *testing.T) {
	b := NewMemory()
	if b == nil {
		t.Fatal("NewMemory() returned nil")
	}
	if b.bfs == nil {
		t.Error("NewMemory() bfs field is nil")
	}
}

// TestLocal_Constructor verifies NewLocal roots the backend at the given
// directory.
func TestLocal_Constructor(t *testing.T) {
	root := t.TempDir()
	b := NewLocal(root)
	if b == nil {
		t.Fatal("NewLocal() returned nil")
	}
	if got := b.Unwrap().Root(); got != root {
		t.Errorf("Unwrap().Root() = %q, want %q", got, root)
	}
}

// TestBackend_Unwrap verifies Unwrap returns the wrapped filesystem.
func TestBackend_Unwrap(t *testing.T) {
	bfs := memfs.New()
	b := New(bfs)
	if b.Unwrap() != bfs {
		t.Error("Unwrap() did not return the wrapped filesystem")
	}
}

// TestBackend_Root verifies the mount root reads as an existing directory
// even over an empty filesystem.
func TestBackend_Root(t *testing.T) {
	b := NewMemory()
	m := newMount(t, b)

	root := m.Root()
	if !root.Exists() {
		t.Error("Exists(root) = false, want true")
	}
	if !root.IsDir() {
		t.Error("IsDir(root) = false, want true")
	}
	if root.IsLeaf() {
		t.Error("IsLeaf(root) = true, want false")
	}

	native, ok := root.Resolve()
	if !ok {
		t.Fatal("Resolve(root) reported absent")
	}
	if native != b.Unwrap().Root() {
		t.Errorf("Resolve(root) = %q, want %q", native, b.Unwrap().Root())
	}
}

// TestBackend_OpenAndMetadata verifies content and stat-backed queries.
func TestBackend_OpenAndMetadata(t *testing.T) {
	b := NewMemory()
	writeFile(t, b.Unwrap(), "docs/readme.md", "hello")
	m := newMount(t, b)

	f := handle(t, m, "docs/readme.md")
	if !f.Exists() {
		t.Fatal("Exists() = false, want true")
	}
	if !f.IsLeaf() {
		t.Error("IsLeaf() = false, want true")
	}
	if f.IsDir() {
		t.Error("IsDir() = true, want false")
	}
	if got := f.Size(); got != 5 {
		t.Errorf("Size() = %d, want 5", got)
	}

	r, err := f.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", data, "hello")
	}

	if dir := handle(t, m, "docs"); !dir.IsDir() {
		t.Error("IsDir(docs) = false, want true")
	}
}

// TestBackend_OpenMissing verifies a missing target maps to
// fs.ErrNotExist.
func TestBackend_OpenMissing(t *testing.T) {
	m := newMount(t, NewMemory())

	_, err := handle(t, m, "missing.txt").Open()
	if !errors.Is(err, iofs.ErrNotExist) {
		t.Errorf("Open() error = %v, want fs.ErrNotExist", err)
	}
}

// TestBackend_MetadataNeutral verifies absent targets answer neutrally.
func TestBackend_MetadataNeutral(t *testing.T) {
	m := newMount(t, NewMemory())
	f := handle(t, m, "missing")

	if f.Exists() {
		t.Error("Exists() = true, want false")
	}
	if f.IsLeaf() || f.IsDir() {
		t.Error("IsLeaf()/IsDir() = true, want false")
	}
	if got := f.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0", got)
	}
	if !f.ModTime().IsZero() {
		t.Errorf("ModTime() = %v, want zero", f.ModTime())
	}
}

// TestBackend_List verifies directory listings.
func TestBackend_List(t *testing.T) {
	b := NewMemory()
	writeFile(t, b.Unwrap(), "a.txt", "a")
	writeFile(t, b.Unwrap(), "dir/nested.txt", "n")
	m := newMount(t, b)

	got := m.Root().List()
	slices.Sort(got)
	if want := []string{"a.txt", "dir"}; !slices.Equal(got, want) {
		t.Errorf("List(root) = %v, want %v", got, want)
	}

	if got := handle(t, m, "a.txt").List(); len(got) != 0 {
		t.Errorf("List(leaf) = %v, want empty", got)
	}
	if got := handle(t, m, "missing").List(); len(got) != 0 {
		t.Errorf("List(absent) = %v, want empty", got)
	}
}

// TestBackend_Remove verifies best-effort deletion.
func TestBackend_Remove(t *testing.T) {
	b := NewMemory()
	writeFile(t, b.Unwrap(), "a.txt", "a")
	m := newMount(t, b)

	f := handle(t, m, "a.txt")
	if !f.Remove() {
		t.Fatal("Remove() = false, want true")
	}
	if f.Exists() {
		t.Error("file still exists after removal")
	}

	if m.Root().Remove() {
		t.Error("Remove(root) = true, want false")
	}
	if handle(t, m, "missing").Remove() {
		t.Error("Remove(missing) = true, want false")
	}
}

// TestBackend_ResolveNonRoot verifies targets below the root report no
// native representation.
func TestBackend_ResolveNonRoot(t *testing.T) {
	b := NewMemory()
	writeFile(t, b.Unwrap(), "a.txt", "a")
	m := newMount(t, b)

	native, ok := handle(t, m, "a.txt").Resolve()
	if ok || native != "" {
		t.Errorf("Resolve() = (%q, %v), want (\"\", false)", native, ok)
	}
}

// TestBackend_Identity verifies the static backend descriptors.
func TestBackend_Identity(t *testing.T) {
	b := NewMemory()
	m := newMount(t, b)

	if got := b.Kind(); got != core.KindAdapter {
		t.Errorf("Kind() = %v, want %v", got, core.KindAdapter)
	}
	if b.ReadOnly() {
		t.Error("ReadOnly() = true, want false")
	}
	if got := b.Signers(m, m.Root()); got != nil {
		t.Errorf("Signers() = %v, want nil", got)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close() again error = %v", err)
	}
}

// TestLocal_Operations verifies the osfs-backed variant reads native
// files below its root.
func TestLocal_Operations(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("native"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	m := newMount(t, NewLocal(root))

	f, err := m.Find("a.txt")
	if err != nil {
		t.Fatalf("Find(a.txt) error = %v", err)
	}
	r, err := f.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "native" {
		t.Errorf("content = %q, want %q", data, "native")
	}
}

// TestConformance runs the shared backend contract suite over a seeded
// in-memory filesystem.
func TestConformance(t *testing.T) {
	vfstest.TestBackend(t, func(t *testing.T) *core.Mount {
		b := NewMemory()
		for p, mf := range vfstest.Seed() {
			if mf.Mode.IsDir() {
				if err := b.Unwrap().MkdirAll(p, 0o755); err != nil {
					t.Fatalf("MkdirAll(%q) error = %v", p, err)
				}
				continue
			}
			writeFile(t, b.Unwrap(), p, string(mf.Data))
		}
		return newMount(t, b)
	})
}
