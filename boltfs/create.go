package boltfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"
	"time"

	"github.com/opencontainers/go-digest"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"
)

// Create writes a bundle at dst from the source tree. Files are hashed
// concurrently, then the whole bundle is committed in one transaction;
// files with identical content share one blob. Creating over an existing
// file fails with fs.ErrExist.
func Create(ctx context.Context, dst string, src fs.FS, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("create bundle %q: %w", dst, fs.ErrExist)
	}

	records, files, err := scan(src)
	if err != nil {
		return fmt.Errorf("create bundle %q: %w", dst, err)
	}

	blobs, err := hashAll(ctx, src, records, files, o.workers)
	if err != nil {
		return fmt.Errorf("create bundle %q: %w", dst, err)
	}

	if err := write(dst, records, blobs); err != nil {
		return err
	}
	o.logger.Debug("bundle created", "path", dst, "entries", len(records), "blobs", len(blobs))
	return nil
}

// scan walks the source tree, building a record per node and the list of
// file paths still needing content hashes. Child names keep the walk's
// lexical order.
func scan(src fs.FS) (map[string]*entryRecord, []string, error) {
	records := make(map[string]*entryRecord)
	var files []string

	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		rel := relOf(p)
		if d.IsDir() {
			records[rel] = &entryRecord{Kind: kindDir, Modified: info.ModTime()}
		} else {
			records[rel] = &entryRecord{Kind: kindFile, Size: info.Size(), Modified: info.ModTime()}
			files = append(files, p)
		}
		if p != "." {
			parent := records[relOf(path.Dir(p))]
			parent.Entries = append(parent.Entries, d.Name())
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return records, files, nil
}

// hashAll reads and digests every file, bounded by the worker limit, and
// fills in each record's digest. Identical content collapses to one
// blob.
func hashAll(ctx context.Context, src fs.FS, records map[string]*entryRecord, files []string, workers int) (map[digest.Digest][]byte, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	var mu sync.Mutex
	blobs := make(map[digest.Digest][]byte)

	for _, p := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(src, p)
			if err != nil {
				return fmt.Errorf("read %q: %w", p, err)
			}
			d := digest.FromBytes(data)

			mu.Lock()
			if _, ok := blobs[d]; !ok {
				blobs[d] = data
			}
			records[relOf(p)].Digest = d.String()
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return blobs, nil
}

// write commits the bundle in a single transaction. A failed write
// removes the half-written file.
func write(dst string, records map[string]*entryRecord, blobs map[digest.Digest][]byte) error {
	db, err := bolt.Open(dst, 0o600, nil)
	if err != nil {
		return fmt.Errorf("create bundle %q: %w", dst, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		if err := meta.Put(keyFormat, []byte(formatVersion)); err != nil {
			return err
		}
		if err := meta.Put(keyCreated, []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
			return err
		}

		entries, err := tx.CreateBucket(bucketEntries)
		if err != nil {
			return err
		}
		for rel, rec := range records {
			raw, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := entries.Put(keyFor(rel), raw); err != nil {
				return err
			}
		}

		bb, err := tx.CreateBucket(bucketBlobs)
		if err != nil {
			return err
		}
		for d, data := range blobs {
			if err := bb.Put([]byte(d.String()), data); err != nil {
				return err
			}
		}
		return nil
	})
	closeErr := db.Close()
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("write bundle %q: %w", dst, err)
	}
	if closeErr != nil {
		return fmt.Errorf("close bundle %q: %w", dst, closeErr)
	}
	return nil
}

// relOf maps an fs.FS path onto the mount-relative form, where the root
// is the empty string.
func relOf(p string) string {
	if p == "." {
		return ""
	}
	return p
}
