package cli

import (
	"github.com/spf13/cobra"

	"github.com/roomkit/roomkit/internal/initcmd"
)

func NewInitCommand(_ *RootOptions) *cobra.Command {
	opt := initcmd.Opt{}
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter app, scenario and config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := opt
			if len(args) > 0 {
				o.Dir = args[0]
			}
			o.Out = cmd.OutOrStdout()
			return initcmd.Run(o)
		},
	}
	cmd.Flags().StringVarP(&opt.Name, "name", "n", initcmd.DefaultName, "app name; the script is written as <name>.js")
	cmd.Flags().StringVarP(&opt.Template, "template", "t", initcmd.DefaultTemplate, "starter template")
	cmd.Flags().BoolVar(&opt.Force, "force", false, "overwrite existing files")
	cmd.Flags().BoolVar(&opt.DryRun, "dry-run", false, "print what would be written")
	cmd.Flags().BoolVar(&opt.NoGitignore, "no-gitignore", false, "leave .gitignore alone")
	cmd.Flags().BoolVar(&opt.List, "list", false, "list templates and exit")
	return cmd
}
