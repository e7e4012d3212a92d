package core

import (
	"io"
	"io/fs"
	"sort"
	"time"
)

// AsFS returns a read-only fs.FS view of the mount's subtree, so virtual
// trees can be consumed by fs.WalkDir, fs.ReadFile, fs.Glob, and other
// io/fs tooling. Names follow io/fs rules: forward slashes, and "." for
// the mount root.
//
// The returned value implements fs.ReadDirFS, fs.ReadFileFS, and
// fs.StatFS in addition to fs.FS.
func AsFS(m *Mount) fs.FS {
	return &fsAdapter{m: m}
}

type fsAdapter struct {
	m *Mount
}

// resolve maps an io/fs name onto a checked handle.
func (a *fsAdapter) resolve(op, name string) (*VirtualFile, error) {
	if !fs.ValidPath(name) {
		return nil, PathError(op, name, ErrInvalid)
	}
	if name == "." {
		return a.m.Root(), nil
	}
	return a.m.Find(name)
}

// Open opens the named file. Directories open as fs.ReadDirFile.
func (a *fsAdapter) Open(name string) (fs.File, error) {
	f, err := a.resolve("open", name)
	if err != nil {
		return nil, err
	}
	if f.IsDir() {
		return &dirFile{f: f, info: infoFor(f)}, nil
	}
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	return &regularFile{r: r, info: infoFor(f)}, nil
}

// Stat implements fs.StatFS.
func (a *fsAdapter) Stat(name string) (fs.FileInfo, error) {
	f, err := a.resolve("stat", name)
	if err != nil {
		return nil, err
	}
	return infoFor(f), nil
}

// ReadDir implements fs.ReadDirFS. Entries are sorted by name per the
// io/fs contract, regardless of the backend's listing order.
func (a *fsAdapter) ReadDir(name string) ([]fs.DirEntry, error) {
	f, err := a.resolve("readdir", name)
	if err != nil {
		return nil, err
	}
	if !f.IsDir() {
		return nil, PathErrorf("readdir", name, "not a directory")
	}
	return entriesFor(f), nil
}

// ReadFile implements fs.ReadFileFS, avoiding the default read loop.
func (a *fsAdapter) ReadFile(name string) ([]byte, error) {
	f, err := a.resolve("readfile", name)
	if err != nil {
		return nil, err
	}
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

func entriesFor(f *VirtualFile) []fs.DirEntry {
	children := f.Children()
	entries := make([]fs.DirEntry, 0, len(children))
	for _, child := range children {
		entries = append(entries, dirEntry{info: infoFor(child)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries
}

// infoFor snapshots a handle's metadata into an fs.FileInfo.
func infoFor(f *VirtualFile) fileInfo {
	info := fileInfo{name: f.Name(), modTime: f.ModTime()}
	if f.IsDir() {
		info.mode = fs.ModeDir | 0o555
	} else {
		info.mode = 0o444
		info.size = f.Size()
	}
	return info
}

// fileInfo implements fs.FileInfo for virtual files.
type fileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (i fileInfo) Name() string       { return i.name }
func (i fileInfo) Size() int64        { return i.size }
func (i fileInfo) Mode() fs.FileMode  { return i.mode }
func (i fileInfo) ModTime() time.Time { return i.modTime }
func (i fileInfo) IsDir() bool        { return i.mode.IsDir() }
func (i fileInfo) Sys() interface{}   { return nil }

// dirEntry implements fs.DirEntry over a metadata snapshot.
type dirEntry struct {
	info fileInfo
}

func (d dirEntry) Name() string               { return d.info.Name() }
func (d dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// regularFile implements fs.File for a content-bearing virtual file.
type regularFile struct {
	r    io.ReadCloser
	info fileInfo
}

func (f *regularFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *regularFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *regularFile) Close() error               { return f.r.Close() }

// dirFile implements fs.File and fs.ReadDirFile for a directory. When
// n > 0, ReadDir returns at most n entries per call and subsequent calls
// continue from the previous position, per the io/fs contract.
type dirFile struct {
	f       *VirtualFile
	info    fileInfo
	entries []fs.DirEntry // populated on first ReadDir
	read    bool
	next    int
}

func (d *dirFile) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *dirFile) Read([]byte) (int, error) {
	return 0, PathErrorf("read", d.f.Path(), "is a directory")
}
func (d *dirFile) Close() error { return nil }

func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.read {
		d.entries = entriesFor(d.f)
		d.read = true
	}
	if n <= 0 {
		out := d.entries[d.next:]
		d.next = len(d.entries)
		return out, nil
	}
	if d.next >= len(d.entries) {
		return nil, io.EOF
	}
	end := d.next + n
	if end > len(d.entries) {
		end = len(d.entries)
	}
	out := d.entries[d.next:end]
	d.next = end
	return out, nil
}

// Compile-time interface checks.
var (
	_ fs.FS          = (*fsAdapter)(nil)
	_ fs.ReadDirFS   = (*fsAdapter)(nil)
	_ fs.ReadFileFS  = (*fsAdapter)(nil)
	_ fs.StatFS      = (*fsAdapter)(nil)
	_ fs.FileInfo    = fileInfo{}
	_ fs.DirEntry    = dirEntry{}
	_ fs.File        = (*regularFile)(nil)
	_ fs.ReadDirFile = (*dirFile)(nil)
)
