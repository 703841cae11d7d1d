// Package chat defines the renderable chat line and the transcript the
// host appends to.
package chat

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultForeground = "#000000"
	DefaultBackground = "#FFFFFF"
	WeightNormal      = "normal"
	WeightBold        = "bold"

	TipForeground = "#000000"
	TipBackground = "#FFFF33"
)

// Line is a single transcript entry. Lines are values and are never
// changed after they reach a transcript.
type Line struct {
	ID         string
	At         time.Time
	Text       string
	From       string
	Foreground string
	Background string
	Tip        int
	To         string
	Weight     string
}

type LineOption func(*Line)

// From marks the viewer the line originates from.
func From(name string) LineOption {
	return func(l *Line) { l.From = name }
}

// Foreground sets the text color exactly as given, empty included.
func Foreground(fg string) LineOption {
	return func(l *Line) { l.Foreground = fg }
}

// Colors sets foreground and background. Empty values keep the defaults.
func Colors(fg, bg string) LineOption {
	return func(l *Line) {
		if fg != "" {
			l.Foreground = fg
		}
		if bg != "" {
			l.Background = bg
		}
	}
}

func Tip(amount int) LineOption {
	return func(l *Line) { l.Tip = amount }
}

// To routes the line to a single user or a group such as "cblog".
func To(target string) LineOption {
	return func(l *Line) { l.To = target }
}

func Weight(w string) LineOption {
	return func(l *Line) {
		if w != "" {
			l.Weight = w
		}
	}
}

func NewLine(text string, opts ...LineOption) Line {
	l := Line{
		ID:         uuid.NewString(),
		At:         time.Now(),
		Text:       text,
		Foreground: DefaultForeground,
		Background: DefaultBackground,
		Weight:     WeightNormal,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// System reports whether the line was produced by the host rather than a viewer.
func (l Line) System() bool { return l.From == "" }
