package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/roomkit/roomkit/internal/app"
	"github.com/roomkit/roomkit/internal/scenario"
	"github.com/roomkit/roomkit/internal/settings"
	"github.com/roomkit/roomkit/internal/watcher"
)

const watchTick = 250 * time.Millisecond

// watchApp keeps the room open until ctx ends, firing timers as time passes
// and restarting the app each time its file changes. A restart that fails
// is reported by the host and the watch goes on.
func watchApp(ctx context.Context, host *app.Context, player *scenario.Player, path string, src []byte, values func() (settings.Map, error)) error {
	w := watcher.New(watcher.Options{Interval: watchTick})
	w.Track(path, src)
	w.Start()
	defer w.Stop()

	log := slog.Default().With("component", "watch", "app", path)
	log.Info("watching for changes")

	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			player.Advance(watchTick)
		case ev := <-w.Events():
			if ev.Kind == watcher.EventMissing {
				log.Warn("app file is gone; the running app keeps going")
				continue
			}
			restartApp(ctx, host, path, values, log)
		}
	}
}

func restartApp(ctx context.Context, host *app.Context, path string, values func() (settings.Map, error), log *slog.Logger) {
	v, err := values()
	if err != nil {
		if !Reported(err) {
			log.Error("restart skipped", "err", err)
		}
		return
	}
	if err := host.StartApp(ctx, path, v); err != nil {
		return
	}
	log.Info("app restarted")
}
