package cli

import (
	"github.com/spf13/cobra"

	"github.com/roomkit/roomkit/internal/config"
	"github.com/roomkit/roomkit/internal/scenario"
	"github.com/roomkit/roomkit/internal/settings"
)

type settingsOptions struct {
	values string
}

func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &settingsOptions{}
	cmd := &cobra.Command{
		Use:   "settings <app>",
		Short: "Print the settings an app declares",
		Long: `Run the app once in a throwaway scope and print the settings_choices it
declares as YAML. With --values, print the values the app would start with
instead: declared defaults overlaid with the file and checked against the
declaration.`,
		Args: cobra.ExactArgs(1),
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

			choices, err := host.ExtractSettings(cmd.Context(), config.ResolveApp(args[0]))
			if err != nil {
				return errReported
			}
			if opts.values == "" {
				return scenario.EncodeChoices(cmd.OutOrStdout(), choices)
			}
			overrides, err := scenario.LoadValues(opts.values)
			if err != nil {
				return err
			}
			values, err := settings.Resolve(settings.ParseChoices(choices), overrides)
			if err != nil {
				return err
			}
			return scenario.EncodeChoices(cmd.OutOrStdout(), values)
		},
	}
	cmd.Flags().StringVar(&opts.values, "values", "", "YAML file of setting values to resolve")
	return cmd
}
