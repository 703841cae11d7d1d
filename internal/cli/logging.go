package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func setupLogging(w io.Writer, opts *RootOptions) error {
	level := firstNonEmpty(opts.LogLevel, opts.getenv("LOG_LEVEL"))
	format := firstNonEmpty(opts.LogFormat, opts.getenv("LOG_FORMAT"))
	log, err := newLogger(w, level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	return nil
}

// newLogger builds the process logger. Chat output goes to stdout, so
// logs default to warn level on stderr.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl := slog.LevelWarn
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
