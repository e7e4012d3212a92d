// Package vfstest provides a conformance test suite for validating
// backend implementations against the core.Backend contract.
//
// The suite verifies contract behavior, not backend-specific detail:
// root resolution, neutral absence for metadata queries, stream errors
// for missing targets, and close idempotence. Backends with different
// capabilities configure the suite rather than skipping it.
//
// Example usage:
//
//	func TestConformance(t *testing.T) {
//	    vfstest.TestBackend(t, func(t *testing.T) *core.Mount {
//	        b := memory.New()
//	        if err := b.FromFS(vfstest.Seed()); err != nil {
//	            t.Fatalf("seed: %v", err)
//	        }
//	        m, err := core.NewMount("/", b)
//	        if err != nil {
//	            t.Fatalf("mount: %v", err)
//	        }
//	        return m
//	    })
//	}
package vfstest

import (
	"testing"

	"github.com/jmgilman/go/vfs/core"
)

// Factory returns a fresh mount whose backend serves the Seed tree. The
// suite may mutate the returned mount's backend, so every call must
// build an independent instance. Cleanup belongs to the factory, via
// t.Cleanup.
type Factory func(t *testing.T) *core.Mount

// Config adjusts the suite to a backend's capabilities.
type Config struct {
	// Writable indicates the backend supports Remove. When false the
	// suite verifies Remove reports failure and leaves the tree intact.
	Writable bool

	// NativeResolve indicates targets below the mount point resolve to
	// native handles. When false the suite verifies non-root resolution
	// reports absent.
	NativeResolve bool
}

// DefaultConfig returns the configuration for writable backends without
// native path resolution, such as the in-memory tree.
func DefaultConfig() Config {
	return Config{Writable: true}
}

// TestBackend runs the conformance suite with DefaultConfig.
func TestBackend(t *testing.T, factory Factory) {
	TestBackendWithConfig(t, factory, DefaultConfig())
}

// TestBackendWithConfig runs the conformance suite with the given
// configuration.
func TestBackendWithConfig(t *testing.T, factory Factory, config Config) {
	t.Run("RootResolve", func(t *testing.T) {
		testRootResolve(t, factory(t))
	})
	t.Run("RootKind", func(t *testing.T) {
		testRootKind(t, factory(t))
	})
	t.Run("OpenLeaf", func(t *testing.T) {
		testOpenLeaf(t, factory(t))
	})
	t.Run("OpenMissing", func(t *testing.T) {
		testOpenMissing(t, factory(t))
	})
	t.Run("ListDir", func(t *testing.T) {
		testListDir(t, factory(t))
	})
	t.Run("ListNeutral", func(t *testing.T) {
		testListNeutral(t, factory(t))
	})
	t.Run("MetadataNeutral", func(t *testing.T) {
		testMetadataNeutral(t, factory(t))
	})
	t.Run("FindMissing", func(t *testing.T) {
		testFindMissing(t, factory(t))
	})
	t.Run("Resolve", func(t *testing.T) {
		testResolve(t, factory(t), config)
	})
	t.Run("Remove", func(t *testing.T) {
		testRemove(t, factory(t), config)
	})
	t.Run("ReadOnlyFlag", func(t *testing.T) {
		testReadOnlyFlag(t, factory(t), config)
	})
	t.Run("CloseIdempotent", func(t *testing.T) {
		testCloseIdempotent(t, factory(t))
	})
}
