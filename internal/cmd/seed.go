package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates and returns the seed subcommand for the vfs CLI.
// It generates a test tree whose file content repeats, which makes it a
// good input for exercising bundle deduplication.
func NewSeedCmd() *cobra.Command {
	var (
		outputPath string
		fileCount  int
		dirCount   int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a test tree with repeated content",
		Long: `Generate test files for exercising backends and bundles.

Files are spread across numbered directories and each file holds a single
line drawn from a pool of 50 UUIDs, so bundling the tree demonstrates
content deduplication.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(outputPath, fileCount, dirCount, verbose)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&fileCount, "count", "c", 10000, "Number of files to generate")
	cmd.Flags().IntVarP(&dirCount, "dirs", "d", 16, "Number of directories to spread files across")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runSeed(outputPath string, fileCount, dirCount int, verbose bool) error {
	if dirCount < 1 {
		dirCount = 1
	}
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	pool := make([]string, 50)
	for i := range pool {
		pool[i] = uuid.New().String()
	}

	for i := 0; i < fileCount; i++ {
		dir := filepath.Join(outputPath, fmt.Sprintf("d%03d", i%dirCount))
		if i < dirCount {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create directory %q: %w", dir, err)
			}
		}

		name := filepath.Join(dir, fmt.Sprintf("file-%06d.txt", i))
		line := pool[i%len(pool)] + "\n"
		if err := os.WriteFile(name, []byte(line), 0o644); err != nil {
			return fmt.Errorf("write %q: %w", name, err)
		}
		if verbose && (i+1)%1000 == 0 {
			fmt.Printf("created %d/%d files\n", i+1, fileCount)
		}
	}

	if verbose {
		fmt.Printf("generated %d files across %d directories in %s\n", fileCount, dirCount, outputPath)
	}
	return nil
}
