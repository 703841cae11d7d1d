package chat

import (
	"bytes"
	"strings"
	"testing"

	"github.com/roomkit/roomkit/internal/theme"
)

func TestNormalizeBackground(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#FFF", "#FFF", true},
		{"#ffffff", "#FFFFFF", true},
		{"#123ABC", "#123ABC", true},
		{"#abc", "#ABC", true},
		{"red", DefaultBackground, false},
		{"#12", DefaultBackground, false},
		{"#1234567", DefaultBackground, false},
		{"#12|", DefaultBackground, false},
		{"url(x.png)", DefaultBackground, false},
		{"", DefaultBackground, false},
		{" #FFF", DefaultBackground, false},
		{"#FFFFFF ", DefaultBackground, false},
	}
	for _, tc := range tests {
		got, ok := NormalizeBackground(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%q: expected (%q, %v), got (%q, %v)", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestNewLineDefaults(t *testing.T) {
	l := NewLine("hello")
	if l.Foreground != DefaultForeground || l.Background != DefaultBackground || l.Weight != WeightNormal {
		t.Fatalf("unexpected defaults %+v", l)
	}
	if l.ID == "" || l.At.IsZero() {
		t.Fatalf("expected id and timestamp")
	}
	if !l.System() {
		t.Fatalf("line without origin must be a system line")
	}
	routed := NewLine("x", From("bob"), Colors("", "#EEEEEE"), To("cblog"), Weight(""), Tip(5))
	if routed.Foreground != DefaultForeground || routed.Background != "#EEEEEE" {
		t.Fatalf("empty color must keep default, got %+v", routed)
	}
	if routed.Weight != WeightNormal || routed.To != "cblog" || routed.Tip != 5 || routed.System() {
		t.Fatalf("unexpected routed line %+v", routed)
	}
}

func TestMemoryRingEvictsOldest(t *testing.T) {
	m := NewMemory(3)
	for _, text := range []string{"a", "b", "c", "d"} {
		m.AddLine(NewLine(text))
	}
	lines := m.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Text != "b" || lines[2].Text != "d" {
		t.Fatalf("unexpected order %q %q", lines[0].Text, lines[2].Text)
	}
	m.Clear()
	if len(m.Lines()) != 0 {
		t.Fatalf("expected empty transcript after clear")
	}
}

func TestTeeFansOut(t *testing.T) {
	a, b := NewMemory(10), NewMemory(10)
	tee := Tee{a, b}
	tee.AddLine(NewLine("x"))
	tee.ViewerChanged("bob")
	if len(a.Lines()) != 1 || len(b.Lines()) != 1 {
		t.Fatalf("expected both transcripts to receive the line")
	}
	if got := b.Changed(); len(got) != 1 || got[0] != "bob" {
		t.Fatalf("unexpected changed list %v", got)
	}
}

func TestPrinterFormatsTipsAndRouting(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, theme.DefaultTheme(), func(string) theme.Role { return theme.RoleTipped })
	p.AddLine(NewLine("for the goal", From("alice"), Colors(TipForeground, TipBackground), Tip(1500)))
	p.AddLine(NewLine("only you", To("bob")))
	out := buf.String()
	if !strings.Contains(out, "alice tipped 1,500 tokens -- for the goal") {
		t.Fatalf("unexpected tip rendering %q", out)
	}
	if !strings.Contains(out, "(to bob) only you") {
		t.Fatalf("unexpected routed rendering %q", out)
	}
}
