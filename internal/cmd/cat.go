package cmd

import (
	"io"

	"github.com/spf13/cobra"
)

// NewCatCmd creates and returns the cat subcommand for the vfs CLI.
func NewCatCmd() *cobra.Command {
	flags := &targetFlags{}

	cmd := &cobra.Command{
		Use:   "cat PATH",
		Short: "Print the content of a virtual file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := flags.openVFS()
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()

			r, err := v.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			_, err = io.Copy(cmd.OutOrStdout(), r)
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
