// Package core provides the foundational interfaces and types for a
// virtual filesystem that presents heterogeneous storage backends as a
// single hierarchical tree.
//
// This package defines the contract that storage backends must implement,
// the virtual file handles callers navigate with, and the resolution
// pipeline that binds backends to virtual mount points. Concrete backends
// live in sibling packages (disk, memory, billyfs, boltfs).
//
// # Design Philosophy
//
// The core package follows these principles:
//
//   - Queries never fail for "not found": absence is encoded in the return
//     value (false, zero, empty, nil). Only stream opens and explicit
//     lookups report a missing resource as an error.
//   - Interface dispatch: backends implement Backend; callers never branch
//     on a backend's concrete type.
//   - Stdlib compatibility: virtual trees can be viewed as a read-only
//     fs.FS, and missing resources satisfy errors.Is(err, fs.ErrNotExist).
//
// # Resolution Pipeline
//
// A VFS owns a set of mounts and an optional resolved-handle cache:
//
//	v := core.New()
//	m, _ := v.Mount("/data", memory.New())
//	f, err := v.Find("/data/config/app.json")
//
// Find consults the installed cache by canonical identifier before walking
// the tree. Handles are deduplicated per mount: resolving the same virtual
// path always yields the same *VirtualFile.
//
// # Checking Errors
//
//	if errors.Is(err, fs.ErrNotExist) {
//	    // resource is absent
//	}
//	if errors.Is(err, core.ErrInvariant) {
//	    // caller bug: the tree was used against its structural rules
//	}
package core
