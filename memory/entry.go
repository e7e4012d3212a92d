package memory

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jmgilman/go/vfs/core"
)

// entry is one node of the in-memory ownership tree. A node either holds
// content (leaf) or owns children (directory), never both. Child
// collections stay nil until the first insertion, so an empty directory
// or leaf costs no extra allocation.
type entry struct {
	name     string
	parent   *entry
	children []*entry          // insertion order, nil until first child
	index    map[string]*entry // name → child, nil until first child
	content  []byte            // non-nil marks a leaf
	modTime  time.Time
}

// newChild creates a node named name below e and registers it with its
// parent. The tree's structural rules are enforced here: a leaf cannot
// gain children, and sibling names are unique.
func (e *entry) newChild(name string) (*entry, error) {
	if e.content != nil {
		return nil, fmt.Errorf("add child %q to leaf %q: %w", name, e.name, core.ErrInvariant)
	}
	if _, ok := e.index[name]; ok {
		return nil, fmt.Errorf("add child %q: %w", name, core.ErrExist)
	}
	child := &entry{name: name, parent: e, modTime: time.Now()}
	e.addChild(name, child)
	return child, nil
}

func (e *entry) addChild(name string, child *entry) {
	if e.children == nil {
		e.children = make([]*entry, 0, 4)
	}
	if e.index == nil {
		e.index = make(map[string]*entry)
	}
	e.children = append(e.children, child)
	e.index[name] = child
}

// removeChild detaches child from e. Both the name mapping and the
// ordered sequence must drop the child; a removal that only partially
// succeeds reports failure rather than leaving the tree corrupted.
func (e *entry) removeChild(child *entry) bool {
	_, removedIndex := e.index[child.name]
	delete(e.index, child.name)

	removedSeq := false
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			removedSeq = true
			break
		}
	}
	return removedIndex && removedSeq
}

// child returns the directly named child, nil when absent. Lookup is a
// map hit, never a scan.
func (e *entry) child(name string) *entry {
	return e.index[name]
}

func (e *entry) isLeaf() bool {
	return e.content != nil
}

// setContent marks e as a leaf holding data. Assigning content to a node
// that owns children violates the leaf/directory exclusivity rule and is
// a caller bug, not a recoverable condition.
func (e *entry) setContent(data []byte) error {
	if len(e.children) > 0 {
		return fmt.Errorf("set content on %q with %d children: %w", e.name, len(e.children), core.ErrInvariant)
	}
	if data == nil {
		data = []byte{}
	}
	e.content = bytes.Clone(data)
	e.modTime = time.Now()
	return nil
}

// names returns the child names in insertion order.
func (e *entry) names() []string {
	if len(e.children) == 0 {
		return nil
	}
	names := make([]string, len(e.children))
	for i, c := range e.children {
		names[i] = c.name
	}
	return names
}
