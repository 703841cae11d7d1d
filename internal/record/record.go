// Package record builds the immutable event payloads handed to app
// callbacks. Builders copy everything they need out of the viewer, so a
// record never holds a reference back to live state.
package record

import "github.com/roomkit/roomkit/internal/viewer"

// Field is one property of a record as the script sees it. Writable fields
// may be reassigned by the script; all fields are undeletable.
type Field struct {
	Name     string
	Value    any
	Writable bool
}

// Record is implemented by every payload the router passes to a callback.
type Record interface {
	Fields() []Field
	// Extensible reports whether the script may add properties.
	Extensible() bool
}

type ViewerSnapshot struct {
	User      string
	InFanClub bool
	HasTokens bool
	IsMod     bool
	Tiers     viewer.Tiers
	Gender    viewer.Gender
}

// Snapshot copies the viewer and classifies its tip total against th.
func Snapshot(v *viewer.Viewer, th viewer.Thresholds) ViewerSnapshot {
	return ViewerSnapshot{
		User:      v.Name(),
		InFanClub: v.InFanClub(),
		HasTokens: v.HasTokens(),
		IsMod:     v.IsModerator(),
		Tiers:     th.Classify(v.Tipped()),
		Gender:    v.Gender(),
	}
}

func (s ViewerSnapshot) Fields() []Field { return s.fields("user", "") }

func (s ViewerSnapshot) Extensible() bool { return false }

// fields names the user key userKey and prefixes every other key.
func (s ViewerSnapshot) fields(userKey, prefix string) []Field {
	return []Field{
		{Name: userKey, Value: s.User},
		{Name: prefix + "in_fanclub", Value: s.InFanClub},
		{Name: prefix + "has_tokens", Value: s.HasTokens},
		{Name: prefix + "is_mod", Value: s.IsMod},
		{Name: prefix + "tipped_recently", Value: s.Tiers.Recently},
		{Name: prefix + "tipped_alot_recently", Value: s.Tiers.ALot},
		{Name: prefix + "tipped_tons_recently", Value: s.Tiers.Tons},
		{Name: prefix + "gender", Value: string(s.Gender)},
	}
}

type TipEvent struct {
	Amount  int
	Message string
	From    ViewerSnapshot
}

func Tip(v *viewer.Viewer, amount int, message string, th viewer.Thresholds) TipEvent {
	return TipEvent{Amount: amount, Message: message, From: Snapshot(v, th)}
}

func (e TipEvent) Fields() []Field {
	out := []Field{
		{Name: "amount", Value: e.Amount},
		{Name: "message", Value: e.Message},
	}
	return append(out, e.From.fields("from_user", "from_user_")...)
}

func (e TipEvent) Extensible() bool { return false }

// ChatEvent carries a chat message. The message, color and font are the
// only writable fields: apps rewrite them, and may add "background" and
// "X-Spam", before the router renders the line.
type ChatEvent struct {
	Viewer  ViewerSnapshot
	Color   string
	Message string
	Font    string
}

func Chat(v *viewer.Viewer, message string, th viewer.Thresholds) ChatEvent {
	return ChatEvent{
		Viewer:  Snapshot(v, th),
		Color:   v.TextColor(),
		Message: message,
		Font:    v.Font(),
	}
}

func (e ChatEvent) Fields() []Field {
	out := e.Viewer.Fields()
	return append(out,
		Field{Name: "c", Value: e.Color, Writable: true},
		Field{Name: "m", Value: e.Message, Writable: true},
		Field{Name: "f", Value: e.Font, Writable: true},
	)
}

func (e ChatEvent) Extensible() bool { return true }

// Verdict is what the router reads back from a chat event after the app's
// message handler returned.
type Verdict struct {
	Allow      bool
	Spam       bool
	Message    string
	Color      string
	Background string
	// HasBackground is set when the app assigned a background at all.
	HasBackground bool
}
