package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roomkit/roomkit/internal/config"
	"github.com/roomkit/roomkit/internal/filesvc"
)

func NewAppsCommand(rootOpts *RootOptions) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "apps [dir]",
		Short: "List apps that can be run by name",
		Long: `List the .js apps in dir, or in the apps folder when no dir is given.
Apps in the apps folder can be passed to check, settings and run by base
name alone.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := config.AppsDir()
			if len(args) > 0 {
				dir = args[0]
			}
			apps, err := filesvc.ListApps(dir, recursive)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(apps) == 0 {
				fmt.Fprintf(out, "no apps in %s\n", dir)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, a := range apps {
				fmt.Fprintf(tw, "%s\t%s\n", a.Name, humanize.Time(a.Modified))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include apps in subfolders")
	return cmd
}
