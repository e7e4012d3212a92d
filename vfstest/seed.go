package vfstest

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

// seedContent is the body of the canonical leaf a.txt.
const seedContent = "hi"

// Seed returns the canonical tree every factory's backend must serve:
//
//	a.txt           leaf, content "hi"
//	dir/nested.txt  leaf
//	dir/sub         empty directory
func Seed() fstest.MapFS {
	return fstest.MapFS{
		"a.txt":          &fstest.MapFile{Data: []byte(seedContent), Mode: 0o644},
		"dir/nested.txt": &fstest.MapFile{Data: []byte("nested content\n"), Mode: 0o644},
		"dir/sub":        &fstest.MapFile{Mode: fs.ModeDir | 0o755},
	}
}

// SeedDir materializes the Seed tree into a fresh temporary directory
// and returns its path. Cleanup is registered with t.
func SeedDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	err := fs.WalkDir(Seed(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		dst := filepath.Join(root, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		data, err := fs.ReadFile(Seed(), p)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
	if err != nil {
		t.Fatalf("seed %s: %v", root, err)
	}
	return root
}
