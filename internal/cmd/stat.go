package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewStatCmd creates and returns the stat subcommand for the vfs CLI.
func NewStatCmd() *cobra.Command {
	flags := &targetFlags{}

	cmd := &cobra.Command{
		Use:   "stat PATH",
		Short: "Show metadata for a virtual path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := flags.openVFS()
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()

			f, err := v.Find(args[0])
			if err != nil {
				return err
			}

			kind := "file"
			if f.IsDir() {
				kind = "directory"
			}
			modified := "-"
			if t := f.ModTime(); !t.IsZero() {
				modified = t.Format(time.RFC3339)
			}
			native := "-"
			if n, ok := f.Resolve(); ok {
				native = n
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "path:\t%s\n", f.Path())
			fmt.Fprintf(w, "id:\t%s\n", f.String())
			fmt.Fprintf(w, "kind:\t%s\n", kind)
			fmt.Fprintf(w, "size:\t%d\n", f.Size())
			fmt.Fprintf(w, "modified:\t%s\n", modified)
			fmt.Fprintf(w, "native:\t%s\n", native)
			fmt.Fprintf(w, "backend:\t%s\n", f.Mount().Backend().Kind())
			return w.Flush()
		},
	}

	flags.register(cmd)
	return cmd
}
