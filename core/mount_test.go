package core

import (
	"bytes"
	"io"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves a fixed tree for handle and traversal tests:
//
//	a.txt      leaf "alpha"
//	dir        directory
//	dir/b.txt  leaf "beta"
type fakeBackend struct {
	dirs   map[string]bool
	files  map[string]string
	closes int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		dirs:  map[string]bool{"": true, "dir": true},
		files: map[string]string{"a.txt": "alpha", "dir/b.txt": "beta"},
	}
}

func (b *fakeBackend) Open(m *Mount, target *VirtualFile) (io.ReadCloser, error) {
	content, ok := b.files[target.RelativePath()]
	if !ok {
		return nil, PathError("open", target.Path(), ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader([]byte(content))), nil
}

func (b *fakeBackend) ReadOnly() bool { return true }

func (b *fakeBackend) Resolve(m *Mount, target *VirtualFile) (string, bool) {
	if target.RelativePath() == "" {
		return b.Source(m), true
	}
	return "", false
}

func (b *fakeBackend) Remove(m *Mount, target *VirtualFile) bool { return false }

func (b *fakeBackend) Size(m *Mount, target *VirtualFile) int64 {
	return int64(len(b.files[target.RelativePath()]))
}

func (b *fakeBackend) ModTime(m *Mount, target *VirtualFile) time.Time {
	if !b.Exists(m, target) {
		return time.Time{}
	}
	return time.Unix(1700000000, 0)
}

func (b *fakeBackend) Exists(m *Mount, target *VirtualFile) bool {
	rel := target.RelativePath()
	_, isFile := b.files[rel]
	return isFile || b.dirs[rel]
}

func (b *fakeBackend) IsLeaf(m *Mount, target *VirtualFile) bool {
	_, ok := b.files[target.RelativePath()]
	return ok
}

func (b *fakeBackend) IsDir(m *Mount, target *VirtualFile) bool {
	return b.dirs[target.RelativePath()]
}

func (b *fakeBackend) List(m *Mount, target *VirtualFile) []string {
	switch target.RelativePath() {
	case "":
		return []string{"a.txt", "dir"}
	case "dir":
		return []string{"b.txt"}
	default:
		return nil
	}
}

func (b *fakeBackend) Signers(m *Mount, target *VirtualFile) []Signer { return nil }

func (b *fakeBackend) Source(m *Mount) string { return "fake:" }

func (b *fakeBackend) Kind() Kind { return KindUnknown }

func (b *fakeBackend) Close() error {
	b.closes++
	return nil
}

var _ Backend = (*fakeBackend)(nil)

// TestNewMount tests construction and mount path normalization.
func TestNewMount(t *testing.T) {
	t.Run("nil backend rejected", func(t *testing.T) {
		_, err := NewMount("/app", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil backend")
	})

	t.Run("path normalization", func(t *testing.T) {
		tests := []struct {
			give string
			want string
			name string
		}{
			{give: "", want: "/", name: "/"},
			{give: "/", want: "/", name: "/"},
			{give: "app", want: "/app", name: "app"},
			{give: "/app/", want: "/app", name: "app"},
			{give: "a//b", want: "/a/b", name: "b"},
		}
		for _, tt := range tests {
			m, err := NewMount(tt.give, newFakeBackend())
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Path(), "mount path for %q", tt.give)
			assert.Equal(t, tt.name, m.Root().Name(), "root name for %q", tt.give)
		}
	})

	t.Run("root handle", func(t *testing.T) {
		m, err := NewMount("/app", newFakeBackend())
		require.NoError(t, err)

		root := m.Root()
		assert.Nil(t, root.Parent())
		assert.Equal(t, "", root.RelativePath())
		assert.Equal(t, "/app", root.Path())
		assert.Equal(t, "vfs:/app", root.String())
		assert.Same(t, m, root.Mount())
	})
}

// TestMountHandleDedup tests that resolving the same path always yields
// the same handle pointer.
func TestMountHandleDedup(t *testing.T) {
	m, err := NewMount("/", newFakeBackend())
	require.NoError(t, err)

	h1, err := m.Handle("dir/b.txt")
	require.NoError(t, err)
	h2, err := m.Handle("dir/b.txt")
	require.NoError(t, err)
	assert.Same(t, h1, h2)

	dir, err := m.Handle("dir")
	require.NoError(t, err)
	assert.Same(t, dir, h1.Parent())

	viaChild, err := dir.Child("b.txt")
	require.NoError(t, err)
	assert.Same(t, h1, viaChild)

	root, err := m.Handle("")
	require.NoError(t, err)
	assert.Same(t, m.Root(), root)
}

// TestMountHandleInvalid tests rejection of malformed segments.
func TestMountHandleInvalid(t *testing.T) {
	m, err := NewMount("/", newFakeBackend())
	require.NoError(t, err)

	_, err = m.Handle("..")
	assert.ErrorIs(t, err, fs.ErrInvalid)

	_, err = m.Root().Child("a/b")
	assert.ErrorIs(t, err, fs.ErrInvalid)

	_, err = m.Root().Child("..")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

// TestMountFind tests existence-checked traversal.
func TestMountFind(t *testing.T) {
	m, err := NewMount("/", newFakeBackend())
	require.NoError(t, err)

	t.Run("hit", func(t *testing.T) {
		f, err := m.Find("dir/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "b.txt", f.Name())
		assert.Equal(t, "/dir/b.txt", f.Path())
	})

	t.Run("empty path is root", func(t *testing.T) {
		f, err := m.Find("")
		require.NoError(t, err)
		assert.Same(t, m.Root(), f)
	})

	t.Run("missing leaf", func(t *testing.T) {
		_, err := m.Find("missing.txt")
		require.ErrorIs(t, err, fs.ErrNotExist)

		var pathErr *fs.PathError
		require.ErrorAs(t, err, &pathErr)
		assert.Equal(t, "find", pathErr.Op)
		assert.Equal(t, "/missing.txt", pathErr.Path)
	})

	t.Run("fails at first unmatched segment", func(t *testing.T) {
		_, err := m.Find("dir/missing/deep.txt")
		require.ErrorIs(t, err, fs.ErrNotExist)

		var pathErr *fs.PathError
		require.ErrorAs(t, err, &pathErr)
		assert.Equal(t, "/dir/missing", pathErr.Path)
	})
}

// TestVirtualFilePaths tests path composition under a nested mount.
func TestVirtualFilePaths(t *testing.T) {
	m, err := NewMount("/app", newFakeBackend())
	require.NoError(t, err)

	f, err := m.Handle("dir/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "dir/b.txt", f.RelativePath())
	assert.Equal(t, "/app/dir/b.txt", f.Path())
	assert.Equal(t, "vfs:/app/dir/b.txt", f.String())
	assert.Equal(t, "dir", f.Parent().Name())
	assert.Same(t, m.Root(), f.Parent().Parent())
}

// TestChildren tests listing-derived handle materialization.
func TestChildren(t *testing.T) {
	m, err := NewMount("/", newFakeBackend())
	require.NoError(t, err)

	children := m.Root().Children()
	require.Len(t, children, 2)
	assert.Equal(t, "a.txt", children[0].Name())
	assert.Equal(t, "dir", children[1].Name())

	dir, err := m.Handle("dir")
	require.NoError(t, err)
	assert.Same(t, dir, children[1])

	leaf, err := m.Find("a.txt")
	require.NoError(t, err)
	assert.Empty(t, leaf.Children())
}
