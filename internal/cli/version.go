package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show roomkit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := rootOpts.Build
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "roomkit %s\n", b.Version)
			fmt.Fprintf(w, "  commit: %s\n", b.Commit)
			fmt.Fprintf(w, "  built:  %s\n", b.Date)
			return nil
		},
	}
}
