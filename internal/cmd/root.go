// Package cmd implements the vfs command line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/vfs/boltfs"
	"github.com/jmgilman/go/vfs/cache"
	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/disk"
)

const version = "0.1.0"

// NewRootCmd creates and returns the root cobra command for the vfs CLI.
// It sets up all subcommands and basic configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vfs",
		Short: "vfs - query files through a virtual filesystem",
		Long: `vfs navigates directory trees and bundle files through one
virtual view, so the same commands work regardless of where the data
actually lives.

Use subcommands to perform different operations:
  - ls: list the entries of a virtual directory
  - cat: print the content of a virtual file
  - stat: show metadata for a virtual path
  - bundle: pack a directory tree into a bundle file
  - seed: generate a test tree with repeated content`,
		Version: version,
	}

	rootCmd.AddCommand(NewLsCmd())
	rootCmd.AddCommand(NewCatCmd())
	rootCmd.AddCommand(NewStatCmd())
	rootCmd.AddCommand(NewBundleCmd())
	rootCmd.AddCommand(NewSeedCmd())

	return rootCmd
}

// targetFlags carries the mount selection shared by the query commands.
type targetFlags struct {
	root       string
	bundle     string
	strictCase bool
	verbose    bool
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.root, "root", "r", ".", "Directory to mount")
	cmd.Flags().StringVarP(&f.bundle, "bundle", "b", "", "Serve from a bundle file instead of a directory")
	cmd.Flags().BoolVar(&f.strictCase, "strict-case", false, "Verify path casing against the stored names")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Enable verbose output")
}

// slogFor returns a debug-level stderr logger when verbose, a discard
// logger otherwise.
func slogFor(verbose bool) *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}

// openVFS builds a VFS with a started resolver cache and the selected
// backend mounted at "/". The caller closes it.
func (f *targetFlags) openVFS() (*core.VFS, error) {
	logger := slogFor(f.verbose)

	c := cache.New(cache.WithLogger(logger))
	if err := c.Start(); err != nil {
		return nil, err
	}
	v := core.New(core.WithCache(c), core.WithLogger(logger))

	backend, err := f.openBackend(logger)
	if err != nil {
		_ = v.Close()
		return nil, err
	}
	if _, err := v.Mount("/", backend); err != nil {
		_ = backend.Close()
		_ = v.Close()
		return nil, err
	}
	return v, nil
}

func (f *targetFlags) openBackend(logger *slog.Logger) (core.Backend, error) {
	if f.bundle != "" {
		return boltfs.Open(f.bundle, boltfs.WithLogger(logger))
	}
	opts := []disk.Option{disk.WithLogger(logger)}
	if f.strictCase {
		opts = append(opts, disk.WithStrictCase())
	}
	return disk.New(f.root, opts...)
}
