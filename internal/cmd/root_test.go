package cmd

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func seedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "inner.txt"), []byte("inner"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return dir
}

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()

	if root.Use != "vfs" {
		t.Errorf("root.Use = %q, expected %q", root.Use, "vfs")
	}
	if root.Version == "" {
		t.Error("root.Version is empty")
	}

	expected := []string{"ls", "cat", "stat", "bundle", "seed"}
	for _, name := range expected {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestLsCmd(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "root listing",
			args:     nil,
			expected: []string{"a.txt", "sub"},
		},
		{
			name:     "nested listing",
			args:     []string{"sub"},
			expected: []string{"inner.txt"},
		},
		{
			name:     "rooted path",
			args:     []string{"/sub"},
			expected: []string{"inner.txt"},
		},
	}

	dir := seedDir(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewLsCmd(), append([]string{"-r", dir}, tt.args...)...)
			if err != nil {
				t.Fatalf("ls error = %v", err)
			}
			got := strings.Fields(out)
			if len(got) != len(tt.expected) {
				t.Fatalf("ls output = %v, expected %v", got, tt.expected)
			}
			for i := range tt.expected {
				if got[i] != tt.expected[i] {
					t.Errorf("ls output[%d] = %q, expected %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLsCmdMissing(t *testing.T) {
	dir := seedDir(t)
	if _, err := execute(t, NewLsCmd(), "-r", dir, "no/such/path"); err == nil {
		t.Error("ls on a missing path succeeded, expected error")
	}
}

func TestCatCmd(t *testing.T) {
	dir := seedDir(t)

	out, err := execute(t, NewCatCmd(), "-r", dir, "a.txt")
	if err != nil {
		t.Fatalf("cat error = %v", err)
	}
	if out != "hello" {
		t.Errorf("cat output = %q, expected %q", out, "hello")
	}

	if _, err := execute(t, NewCatCmd(), "-r", dir, "missing.txt"); err == nil {
		t.Error("cat on a missing file succeeded, expected error")
	}
}

func TestStatCmd(t *testing.T) {
	dir := seedDir(t)

	out, err := execute(t, NewStatCmd(), "-r", dir, "a.txt")
	if err != nil {
		t.Fatalf("stat error = %v", err)
	}

	for _, want := range []string{"/a.txt", "vfs:/a.txt", "file", "disk", "5"} {
		if !strings.Contains(out, want) {
			t.Errorf("stat output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, NewStatCmd(), "-r", dir, "sub")
	if err != nil {
		t.Fatalf("stat error = %v", err)
	}
	if !strings.Contains(out, "directory") {
		t.Errorf("stat output missing %q:\n%s", "directory", out)
	}
}

func TestBundleCmd(t *testing.T) {
	dir := seedDir(t)
	bundle := filepath.Join(t.TempDir(), "data.bundle")

	if _, err := execute(t, NewBundleCmd(), "-o", bundle, dir); err != nil {
		t.Fatalf("bundle error = %v", err)
	}
	if _, err := os.Stat(bundle); err != nil {
		t.Fatalf("bundle file was not written: %v", err)
	}

	// The query commands serve the bundle in place of the directory.
	out, err := execute(t, NewLsCmd(), "-b", bundle)
	if err != nil {
		t.Fatalf("ls --bundle error = %v", err)
	}
	got := strings.Fields(out)
	if len(got) != 2 || got[0] != "a.txt" || got[1] != "sub" {
		t.Errorf("ls --bundle output = %v, expected [a.txt sub]", got)
	}

	out, err = execute(t, NewCatCmd(), "-b", bundle, "sub/inner.txt")
	if err != nil {
		t.Fatalf("cat --bundle error = %v", err)
	}
	if out != "inner" {
		t.Errorf("cat --bundle output = %q, expected %q", out, "inner")
	}
}

func TestBundleCmdMissingOutput(t *testing.T) {
	if _, err := execute(t, NewBundleCmd(), seedDir(t)); err == nil {
		t.Error("bundle without --output succeeded, expected error")
	}
}

func TestSeedCmd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seeded")

	if _, err := execute(t, NewSeedCmd(), "-o", dir, "-c", "10", "-d", "3"); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	files := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir() error = %v", err)
	}
	if files != 10 {
		t.Errorf("seeded %d files, expected 10", files)
	}

	for _, sub := range []string{"d000", "d001", "d002"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Errorf("directory %q was not created: %v", sub, err)
		}
	}
}
