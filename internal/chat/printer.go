package chat

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/roomkit/roomkit/internal/theme"
)

// RoleFunc reports how a viewer name should be styled.
type RoleFunc func(name string) theme.Role

// Printer renders lines to a terminal as they are appended.
type Printer struct {
	mu         sync.Mutex
	out        io.Writer
	theme      theme.Theme
	roles      RoleFunc
	timestamps bool
}

func NewPrinter(out io.Writer, th theme.Theme, roles RoleFunc) *Printer {
	return &Printer{out: out, theme: th, roles: roles}
}

// WithTimestamps prefixes every printed line with its clock time.
func (p *Printer) WithTimestamps(on bool) *Printer {
	p.timestamps = on
	return p
}

func (p *Printer) AddLine(l Line) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.Format(l))
}

func (p *Printer) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.theme.Routed.Render("--- chat cleared ---"))
}

func (p *Printer) ViewerChanged(string) {}

// Format renders a single line without writing it.
func (p *Printer) Format(l Line) string {
	var b strings.Builder
	if p.timestamps && !l.At.IsZero() {
		b.WriteString(p.theme.Timestamp.Render(l.At.Format("15:04:05")))
		b.WriteByte(' ')
	}
	if l.To != "" {
		b.WriteString(p.theme.Routed.Render("(to " + l.To + ")"))
		b.WriteByte(' ')
	}
	if l.Tip > 0 {
		b.WriteString(p.theme.TipBadge.Render(tipLabel(l.Tip)))
		b.WriteByte(' ')
	}
	if l.From != "" {
		role := theme.RoleGrey
		if p.roles != nil {
			role = p.roles(l.From)
		}
		b.WriteString(p.theme.Name(role).Render(l.From))
		if l.Tip > 0 {
			b.WriteString(" tipped " + tipLabel(l.Tip))
			if l.Text == "" {
				return b.String()
			}
			b.WriteString(" -- ")
		} else {
			b.WriteString(": ")
		}
	}
	b.WriteString(p.theme.Line(l.Foreground, l.Background, l.Weight == WeightBold).Render(l.Text))
	return b.String()
}

func tipLabel(amount int) string {
	if amount == 1 {
		return "1 token"
	}
	return humanize.Comma(int64(amount)) + " tokens"
}
