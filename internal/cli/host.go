package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/roomkit/roomkit/internal/app"
	"github.com/roomkit/roomkit/internal/chat"
	"github.com/roomkit/roomkit/internal/config"
	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/settings"
	"github.com/roomkit/roomkit/internal/theme"
)

type hostOptions struct {
	cfg    config.Config
	out    io.Writer
	errOut io.Writer
	clock  func() time.Time
	panels bool
	// onError and onEvent observe the host next to the printed output.
	onError func(error)
	onEvent func(kind string, d time.Duration)
}

// openHost builds an app host that prints the transcript to out and every
// reported error to errOut.
func openHost(o hostOptions) (*app.Context, error) {
	var host *app.Context
	roles := func(name string) theme.Role {
		v := host.Viewer(name)
		if v == nil {
			return theme.RoleGrey
		}
		return theme.RoleFor(v.IsRoomOwner(), v.IsModerator(), v.InFanClub(), v.Tipped() > 0, v.HasTokens())
	}
	th := theme.DefaultTheme()
	printer := chat.NewPrinter(o.out, th, roles).WithTimestamps(o.cfg.Chat.Timestamps)

	opts := app.Options{
		Config:     o.cfg,
		Transcript: printer,
		Logger:     slog.Default(),
		Clock:      o.clock,
		OnError: func(err error) {
			fmt.Fprintln(o.errOut, errorStyle.Render("error:")+" "+errdef.Message(err))
			if o.onError != nil {
				o.onError(err)
			}
		},
		OnEvent: o.onEvent,
	}
	if o.panels {
		opts.OnPanel = func(p settings.Value) {
			fmt.Fprintln(o.out, renderPanel(p))
		}
	}
	h, err := app.New(opts)
	if err != nil {
		return nil, err
	}
	host = h
	return host, nil
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC0000")).Bold(true)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#867CC1")).
			Padding(0, 1)
)

// renderPanel draws the rows of an app panel. Panels built from the
// labelled-row templates keep their row order; anything else is listed by
// key.
func renderPanel(p settings.Value) string {
	m, ok := p.(settings.Map)
	if !ok {
		return panelStyle.Render(settings.Text(p))
	}
	var rows []string
	for i := 1; ; i++ {
		label, hasLabel := m[fmt.Sprintf("row%d_label", i)]
		value, hasValue := m[fmt.Sprintf("row%d_value", i)]
		if !hasLabel && !hasValue {
			break
		}
		rows = append(rows, settings.Text(label)+": "+settings.Text(value))
	}
	if len(rows) == 0 {
		keys := make([]string, 0, len(m))
		for k := range m {
			if k != "template" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			rows = append(rows, k+": "+settings.Text(m[k]))
		}
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}
