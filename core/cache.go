package core

// Cache is the contract a resolved-handle cache satisfies. A cache maps
// canonical identifiers (VirtualFile.String form) to previously resolved
// handles so repeated lookups skip tree traversal.
//
// Lifecycle runs stopped → started → stopped: Start before first use,
// Stop to release all entries and registered mounts. Both are safe to
// call repeatedly in matched pairs.
//
// Implementations must be safe for concurrent use: lookups for the same
// identifier may race, registration may interleave with lookups, and
// last-writer-wins is acceptable for concurrent misses.
type Cache interface {
	// Start moves the cache into the started state.
	Start() error

	// Stop releases all cached entries and registered mounts.
	Stop()

	// Register adds a mount to the set the cache resolves against.
	// Registering a mount the cache already tracks fails with
	// ErrDuplicateContext. Caches that delegate registration elsewhere
	// fail with ErrRegistrationClosed.
	Register(m *Mount) error

	// Unregister removes a mount and purges its cached entries.
	// Unregistering an unknown mount is a silent no-op.
	Unregister(m *Mount)

	// Lookup returns the handle for the given canonical identifier. A hit
	// returns the cached handle without traversal; a miss resolves via
	// the registered mount owning the identifier, stores the result, and
	// returns it. Resolution failures propagate verbatim; an identifier
	// no registered mount can satisfy fails with fs.ErrNotExist.
	Lookup(key string) (*VirtualFile, error)
}
