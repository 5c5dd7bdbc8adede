package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/refparser"
	"github.com/erraggy/refparser/internal/cliutil"
)

func newVersionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				cliutil.Writef(cmd.OutOrStdout(), "refparser %s\n", refparser.Version())
				return
			}
			cliutil.Writef(cmd.OutOrStdout(), "refparser\n%s\n", refparser.BuildInfo())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the version number only")
	return cmd
}
