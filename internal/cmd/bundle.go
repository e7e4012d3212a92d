package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/vfs/boltfs"
)

// NewBundleCmd creates and returns the bundle subcommand for the vfs CLI.
// It packs a directory tree into a single bundle file.
func NewBundleCmd() *cobra.Command {
	var (
		output  string
		workers int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "bundle SOURCE_DIR",
		Short: "Pack a directory tree into a bundle file",
		Long: `Pack a directory tree into a single bundle file that the query
commands can serve with --bundle.

File content is stored once per digest, so trees with repeated content
shrink accordingly. Hashing runs concurrently; the bundle is committed
in one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slogFor(verbose)

			opts := []boltfs.Option{boltfs.WithLogger(logger)}
			if workers > 0 {
				opts = append(opts, boltfs.WithWorkers(workers))
			}
			if err := boltfs.Create(cmd.Context(), output, os.DirFS(args[0]), opts...); err != nil {
				return err
			}
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "bundle written to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Path of the bundle file to write (required)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of concurrent hashing workers (default: number of CPUs)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	_ = cmd.MarkFlagRequired("output")

	return cmd
}
