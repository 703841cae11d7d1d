package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roomkit/roomkit/internal/config"
)

func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <app>",
		Short: "Syntax check an app without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			host, err := openHost(hostOptions{cfg: cfg, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer host.Close()

			path := config.ResolveApp(args[0])
			if err := host.CheckSyntax(cmd.Context(), path); err != nil {
				return errReported
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			return nil
		},
	}
}
