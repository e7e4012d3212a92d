package disk

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jmgilman/go/vfs/core"
)

// verifyCase checks that every segment of the candidate path matches the
// stored name on disk byte for byte. Case-insensitive filesystems resolve
// wrongly-cased paths, so the stored names come from directory listings
// rather than from the path itself.
//
// The walk runs leaf-upward over the canonicalized candidate and the
// virtual handle chain in lock step; both must reach the mount root on
// the same iteration. Any canonicalization or listing failure reports the
// target absent. Symlinked segments fail the comparison naturally: their
// canonical names no longer match the virtual names.
func (b *Backend) verifyCase(m *core.Mount, target *core.VirtualFile, candidate string) bool {
	canonRoot, err := filepath.EvalSymlinks(b.root)
	if err != nil {
		b.log.Debug("case check: root canonicalization failed", "root", b.root, "error", err)
		return false
	}
	canonTarget, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return false
	}
	if !underRoot(canonTarget, canonRoot) {
		return false
	}

	cur := target
	native := canonTarget
	for {
		if native == canonRoot {
			return cur == m.Root()
		}
		if cur == m.Root() {
			return false
		}
		dir := filepath.Dir(native)
		stored, ok := storedName(dir, filepath.Base(native))
		if !ok || stored != cur.Name() {
			return false
		}
		cur = cur.Parent()
		native = dir
	}
}

// storedName returns the entry of dir matching leaf, preferring an exact
// match over a case-folded one. The listing carries the name as stored,
// which canonicalization alone does not reveal.
func storedName(dir, leaf string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	var folded string
	found := false
	for _, e := range entries {
		name := e.Name()
		if name == leaf {
			return name, true
		}
		if !found && strings.EqualFold(name, leaf) {
			folded = name
			found = true
		}
	}
	return folded, found
}

// underRoot reports whether target equals root or sits beneath it on a
// segment boundary.
func underRoot(target, root string) bool {
	if target == root {
		return true
	}
	sep := string(filepath.Separator)
	if root == sep {
		return strings.HasPrefix(target, sep)
	}
	return strings.HasPrefix(target, root+sep)
}
