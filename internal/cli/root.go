// Package cli wires the roomkit commands.
package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/roomkit/roomkit/internal/config"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string
	LogFormat  string
	Build      BuildInfo

	getenv func(string) string
}

// errReported marks failures the host already printed.
var errReported = errors.New("failure already reported")

// Reported reports whether err was already shown to the user.
func Reported(err error) bool { return errors.Is(err, errReported) }

func NewRootCommand(build BuildInfo) *cobra.Command {
	opts := &RootOptions{Build: build, getenv: os.Getenv}

	cmd := &cobra.Command{
		Use:   "roomkit",
		Short: "Run chat room apps locally",
		Long: `roomkit hosts chat room apps written against the cb API.

Check an app for syntax errors, list the settings it declares, or replay
a scenario of viewers entering, chatting and tipping against it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotenv(opts.EnvFile); err != nil {
				return err
			}
			return setupLogging(cmd.ErrOrStderr(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.FilePath()+")")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file seeding ROOMKIT_* variables")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level: debug|info|warn|error (default $LOG_LEVEL or warn)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format: text|json (default $LOG_FORMAT or text)")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewAppsCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

func (o *RootOptions) loadConfig() (config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		path = config.FilePath()
	}
	return config.Load(path, o.getenv)
}
