// Package boltfs serves an immutable snapshot of a file tree from a
// single bolt database file. File content is stored once per digest, so
// trees with repeated content cost one blob.
//
// A bundle is written offline with Create and served read-only with
// Open; the backend never mutates the database.
package boltfs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/jmgilman/go/vfs/core"
)

var (
	bucketMeta    = []byte("meta")
	bucketEntries = []byte("entries")
	bucketBlobs   = []byte("blobs")

	keyFormat  = []byte("format")
	keyCreated = []byte("created")
)

// formatVersion is written to the meta bucket at creation and verified
// on open.
const formatVersion = "1"

// entryRecord is the stored form of one tree node. Kind is "dir" or
// "file". Files carry their content length and the digest keying the
// blobs bucket; directories carry their child names in source order.
type entryRecord struct {
	Kind     string    `json:"kind"`
	Size     int64     `json:"size,omitempty"`
	Modified time.Time `json:"modified"`
	Digest   string    `json:"digest,omitempty"`
	Entries  []string  `json:"entries,omitempty"`
}

const (
	kindDir  = "dir"
	kindFile = "file"
)

// keyFor maps a mount-relative path onto its entries-bucket key. Bolt
// forbids empty keys, so the root is stored under "/".
func keyFor(rel string) []byte {
	if rel == "" {
		return []byte("/")
	}
	return []byte("/" + rel)
}

// Backend serves a bundle file. It is safe for concurrent use.
type Backend struct {
	path string
	log  *slog.Logger

	mu     sync.Mutex
	db     *bolt.DB
	closed bool
}

// Open opens the bundle at the given path for serving. The database is
// opened read-only, so several processes may serve one bundle at once.
func Open(path string, opts ...Option) (*Backend, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("open bundle %q: %w", path, err)
	}
	if err := verify(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open bundle %q: %w", path, err)
	}
	b := &Backend{path: path, log: o.logger, db: db}
	b.log.Debug("opened bundle", "path", path)
	return b, nil
}

// verify checks the bundle structure and format version.
func verify(db *bolt.DB) error {
	return db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("not a bundle: missing %q bucket", bucketMeta)
		}
		if tx.Bucket(bucketEntries) == nil {
			return fmt.Errorf("not a bundle: missing %q bucket", bucketEntries)
		}
		if tx.Bucket(bucketBlobs) == nil {
			return fmt.Errorf("not a bundle: missing %q bucket", bucketBlobs)
		}
		if format := string(meta.Get(keyFormat)); format != formatVersion {
			return fmt.Errorf("unsupported bundle format %q", format)
		}
		return nil
	})
}

// load fetches the record for a mount-relative path, reporting absence
// for unknown paths, a closed backend, and any read failure.
func (b *Backend) load(rel string) (entryRecord, bool) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return entryRecord{}, false
	}
	db := b.db
	b.mu.Unlock()

	var rec entryRecord
	found := false
	err := db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketEntries).Get(keyFor(rel))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		b.log.Debug("bundle read failed", "path", rel, "error", err)
		return entryRecord{}, false
	}
	return rec, found
}

// Open opens the target's content for reading. Directories read as
// empty; a missing target fails with fs.ErrNotExist. A record whose blob
// is gone means the bundle is corrupt, which is surfaced as an error
// rather than absence.
func (b *Backend) Open(m *core.Mount, target *core.VirtualFile) (io.ReadCloser, error) {
	rec, ok := b.load(target.RelativePath())
	if !ok {
		return nil, core.PathError("open", target.Path(), core.ErrNotExist)
	}
	if rec.Kind != kindFile {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, core.PathError("open", target.Path(), core.ErrClosed)
	}
	db := b.db
	b.mu.Unlock()

	var data []byte
	err := db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketBlobs).Get([]byte(rec.Digest))
		if raw == nil {
			return fmt.Errorf("missing blob %s", rec.Digest)
		}
		// Bolt memory is only valid inside the transaction.
		data = bytes.Clone(raw)
		return nil
	})
	if err != nil {
		return nil, core.PathError("open", target.Path(), err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// ReadOnly reports true: bundles are immutable once written.
func (b *Backend) ReadOnly() bool {
	return true
}

// Resolve reports the bundle file for the mount point itself. Entries
// inside the bundle have no native representation.
func (b *Backend) Resolve(m *core.Mount, target *core.VirtualFile) (string, bool) {
	if target.RelativePath() == "" {
		return b.path, true
	}
	return "", false
}

// Remove reports false: bundles are immutable.
func (b *Backend) Remove(m *core.Mount, target *core.VirtualFile) bool {
	return false
}

// Size returns the stored content length, 0 when absent or a directory.
func (b *Backend) Size(m *core.Mount, target *core.VirtualFile) int64 {
	rec, ok := b.load(target.RelativePath())
	if !ok {
		return 0
	}
	return rec.Size
}

// ModTime returns the source modification time recorded at bundle
// creation, the zero time when absent.
func (b *Backend) ModTime(m *core.Mount, target *core.VirtualFile) time.Time {
	rec, ok := b.load(target.RelativePath())
	if !ok {
		return time.Time{}
	}
	return rec.Modified
}

// Exists reports whether the target was bundled.
func (b *Backend) Exists(m *core.Mount, target *core.VirtualFile) bool {
	_, ok := b.load(target.RelativePath())
	return ok
}

// IsLeaf reports whether the target is a bundled file.
func (b *Backend) IsLeaf(m *core.Mount, target *core.VirtualFile) bool {
	rec, ok := b.load(target.RelativePath())
	return ok && rec.Kind == kindFile
}

// IsDir reports whether the target is a bundled directory.
func (b *Backend) IsDir(m *core.Mount, target *core.VirtualFile) bool {
	rec, ok := b.load(target.RelativePath())
	return ok && rec.Kind == kindDir
}

// List returns the bundled directory's entry names in source order,
// empty when the target is absent or not a directory.
func (b *Backend) List(m *core.Mount, target *core.VirtualFile) []string {
	rec, ok := b.load(target.RelativePath())
	if !ok || rec.Kind != kindDir {
		return nil
	}
	out := make([]string, len(rec.Entries))
	copy(out, rec.Entries)
	return out
}

// Signers returns nil. Bundles record content digests, not signatures.
func (b *Backend) Signers(m *core.Mount, target *core.VirtualFile) []core.Signer {
	return nil
}

// Source returns the bundle file path.
func (b *Backend) Source(m *core.Mount) string {
	return b.path
}

// Kind reports KindBundle.
func (b *Backend) Kind() core.Kind {
	return core.KindBundle
}

// Close closes the underlying database. Close is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close bundle %q: %w", b.path, err)
	}
	return nil
}

// BlobCount returns the number of distinct content blobs in the bundle.
func (b *Backend) BlobCount() (int, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, fmt.Errorf("bundle %q: %w", b.path, core.ErrClosed)
	}
	db := b.db
	b.mu.Unlock()

	n := 0
	err := db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketBlobs).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Compile-time interface check.
var _ core.Backend = (*Backend)(nil)
