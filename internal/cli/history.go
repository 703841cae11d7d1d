package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/roomkit/roomkit/internal/config"
	"github.com/roomkit/roomkit/internal/history"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

type historyOptions struct {
	limit   int
	remove  string
	latency bool
}

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history [app]",
		Short: "List recorded runs",
		Long: `List past runs newest first, optionally only those of one app. The app
may be given by path or by base name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := history.NewStore(config.HistoryPath(), 0)
			if err := store.Load(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if opts.remove != "" {
				ok, err := store.Delete(opts.remove)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no run with id %s", opts.remove)
				}
				fmt.Fprintf(out, "deleted %s\n", opts.remove)
				return nil
			}

			var app string
			if len(args) > 0 {
				app = args[0]
			}
			entries := store.ByApp(app)
			if len(entries) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}
			if opts.limit > 0 && len(entries) > opts.limit {
				entries = entries[:opts.limit]
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tAPP\tSTARTED\tTOOK\tEVENTS\tRESULT")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					shortID(e.ID), filepath.Base(e.App), humanize.Time(e.StartedAt),
					took(e.Duration), e.Events, result(e))
				if opts.latency {
					for _, l := range e.Latency {
						fmt.Fprintf(tw, "\t  %s\t%d calls\tmean %s\tp90 %s\tmax %s\n",
							l.Kind, l.Count, round(l.Mean), round(l.P90), round(l.Max))
					}
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "show at most this many runs (0 for all)")
	cmd.Flags().StringVar(&opts.remove, "delete", "", "delete the run with this id")
	cmd.Flags().BoolVar(&opts.latency, "latency", false, "show handler timings per event kind")
	return cmd
}

func took(d time.Duration) string {
	if d < time.Millisecond {
		return "0ms"
	}
	return durafmt.Parse(d.Round(time.Millisecond)).LimitFirstN(2).Format(shortUnits)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func result(e history.Entry) string {
	if e.Error == "" {
		return e.Result
	}
	return e.Result + ": " + e.Error
}
