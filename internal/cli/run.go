package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roomkit/roomkit/internal/analysis"
	"github.com/roomkit/roomkit/internal/config"
	"github.com/roomkit/roomkit/internal/history"
	"github.com/roomkit/roomkit/internal/scenario"
	"github.com/roomkit/roomkit/internal/settings"
	"github.com/roomkit/roomkit/internal/telemetry"
)

type runOptions struct {
	scenario    string
	values      string
	realtime    bool
	linger      time.Duration
	metricsAddr string
	noPanel     bool
	stats       bool
	noHistory   bool
	watch       bool
}

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [app]",
		Short: "Start an app and replay a scenario against it",
		Long: `Start an app with its resolved settings and replay a scenario of viewers
entering, chatting and tipping. The app may come from the scenario's app
field instead of the argument.

Waits are skipped on a virtual clock unless --realtime is set; app timers
fire either way. With --watch the room stays open after the scenario and
the app restarts, viewers kept, each time its file is saved. Every run is
recorded in the history file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, rootOpts, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.scenario, "scenario", "s", "", "scenario YAML file")
	cmd.Flags().StringVar(&opts.values, "settings", "", "YAML file of setting values")
	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "wait on the wall clock")
	cmd.Flags().DurationVar(&opts.linger, "for", 0, "keep the room open this long after the scenario")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&opts.noPanel, "no-panel", false, "do not print app panels")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print per-event handler timings when done")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record this run")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "keep the room open and restart the app when its file changes")
	return cmd
}

// run is the state of one run command, recorded in the history when done.
type run struct {
	opts    *runOptions
	entry   history.Entry
	timings *analysis.Timings
	lastErr error
}

func runApp(cmd *cobra.Command, rootOpts *RootOptions, opts *runOptions, args []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}

	telemetry.Init()
	shutdown, err := telemetry.InitTracing(ctx, telemetry.ConfigFromEnv(rootOpts.getenv))
	if err != nil {
		slog.Warn("tracing disabled", "err", err)
	} else {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				slog.Warn("tracing shutdown", "err", err)
			}
		}()
	}
	if opts.metricsAddr != "" {
		stopMetrics := serveMetrics(opts.metricsAddr)
		defer stopMetrics()
	}

	sc := &scenario.File{}
	if opts.scenario != "" {
		if sc, err = scenario.Load(opts.scenario); err != nil {
			return err
		}
	}
	path, err := appPath(args, sc, opts.scenario)
	if err != nil {
		return err
	}

	r := &run{
		opts:    opts,
		timings: analysis.NewTimings(),
		entry: history.Entry{
			App:       path,
			Scenario:  opts.scenario,
			StartedAt: time.Now(),
			Events:    len(sc.Events),
		},
	}
	defer func() { r.finish(ctx, cmd.OutOrStdout(), err) }()

	var clock *scenario.Clock
	now := time.Now
	if !opts.realtime {
		clock = scenario.NewClock(time.Now())
		now = clock.Now
	}
	host, err := openHost(hostOptions{
		cfg:     cfg,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		clock:   now,
		panels:  !opts.noPanel,
		onError: func(err error) { r.lastErr = err },
		onEvent: r.timings.Observe,
	})
	if err != nil {
		return err
	}
	defer host.Close()

	// Snapshot before the first start so a save during startup still
	// counts as a change.
	var src []byte
	if opts.watch {
		if src, err = os.ReadFile(path); err != nil {
			return err
		}
	}

	values, err := resolveValues(ctx, host, path, sc, opts.values)
	if err != nil {
		return err
	}
	if err := host.StartApp(ctx, path, values); err != nil {
		return errReported
	}
	if a, ok := host.Live(); ok {
		r.entry.ID = a.RunID
	}

	player := scenario.NewPlayer(scenario.Options{Host: host, Clock: clock, Logger: slog.Default()})
	if err := player.Play(ctx, sc); err != nil {
		return interrupted(err)
	}
	if opts.linger > 0 {
		if err := player.Wait(ctx, opts.linger); err != nil {
			return interrupted(err)
		}
	}
	slog.Info("scenario finished", "app", path, "run", r.entry.ID, "events", len(sc.Events))
	if opts.watch {
		return watchApp(ctx, host, player, path, src, func() (settings.Map, error) {
			return resolveValues(ctx, host, path, sc, opts.values)
		})
	}
	return nil
}

// finish prints the timing summary and records the run.
func (r *run) finish(ctx context.Context, out io.Writer, err error) {
	stats := r.timings.Summary(50, 90)
	if r.opts.stats && len(stats) > 0 {
		printStats(out, stats)
	}
	if r.opts.noHistory {
		return
	}

	e := r.entry
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Duration = time.Since(e.StartedAt)
	e.Latency = history.LatencyFrom(stats)
	switch {
	case ctx.Err() != nil:
		e.Result = history.ResultInterrupted
	case err == nil:
		e.Result = history.ResultOK
	default:
		e.Result = history.ResultFailed
		e.Error = err.Error()
		if Reported(err) && r.lastErr != nil {
			e.Error = r.lastErr.Error()
		}
	}
	if err := history.NewStore(config.HistoryPath(), 0).Append(e); err != nil {
		slog.Warn("history not recorded", "err", err)
	}
}

func printStats(w io.Writer, stats []analysis.Stats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EVENT\tCOUNT\tMEAN\tP50\tP90\tMAX")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", s.Kind, s.Count,
			round(s.Mean), round(s.Percentiles[50]), round(s.Percentiles[90]), round(s.Max))
	}
	_ = tw.Flush()
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Microsecond)
}

// appPath picks the app from the argument or, failing that, the scenario,
// whose app field is relative to the scenario file.
func appPath(args []string, sc *scenario.File, scenarioPath string) (string, error) {
	if len(args) > 0 {
		return config.ResolveApp(args[0]), nil
	}
	if sc.App == "" {
		return "", errors.New("no app given: pass one or set app in the scenario")
	}
	if filepath.IsAbs(sc.App) {
		return sc.App, nil
	}
	return filepath.Join(filepath.Dir(scenarioPath), sc.App), nil
}

type choicesSource interface {
	ExtractSettings(ctx context.Context, path string) (settings.Value, error)
}

// resolveValues overlays the scenario's settings and the values file on the
// app's declared defaults.
func resolveValues(ctx context.Context, host choicesSource, path string, sc *scenario.File, valuesPath string) (settings.Map, error) {
	choices, err := host.ExtractSettings(ctx, path)
	if err != nil {
		return nil, errReported
	}
	overrides, err := sc.Overrides()
	if err != nil {
		return nil, err
	}
	if valuesPath != "" {
		fromFile, err := scenario.LoadValues(valuesPath)
		if err != nil {
			return nil, err
		}
		overrides = settings.Merge(overrides, fromFile)
	}
	return settings.Resolve(settings.ParseChoices(choices), overrides)
}

func interrupted(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("scenario: %w", err)
}
