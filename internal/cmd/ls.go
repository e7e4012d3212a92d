package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLsCmd creates and returns the ls subcommand for the vfs CLI.
func NewLsCmd() *cobra.Command {
	flags := &targetFlags{}

	cmd := &cobra.Command{
		Use:   "ls [PATH]",
		Short: "List the entries of a virtual directory",
		Long: `List the entries of a virtual directory. PATH defaults to the
mount root. An absent or non-directory path lists as empty.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "/"
			if len(args) == 1 {
				target = args[0]
			}

			v, err := flags.openVFS()
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()

			f, err := v.Find(target)
			if err != nil {
				return err
			}
			for _, name := range f.List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
