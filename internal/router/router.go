// Package router turns viewer activity into app callbacks and transcript
// lines. Every method runs to completion, app callback included, before
// the caller may deliver the next event.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/roomkit/roomkit/internal/bridge"
	"github.com/roomkit/roomkit/internal/chat"
	"github.com/roomkit/roomkit/internal/record"
	"github.com/roomkit/roomkit/internal/telemetry"
	"github.com/roomkit/roomkit/internal/viewer"
)

const (
	GroupLog         = "cblog"
	GroupRoomSubject = "roomsubject"

	LogForeground         = "#FF0000"
	RoomSubjectForeground = "#F47321"

	debugOn  = "Debug mode enabled. Type /debug again to disable."
	debugOff = "Debug mode disabled."
)

// Callbacks is the part of the bridge the router invokes.
type Callbacks interface {
	CallTip(record.TipEvent)
	CallMessage(record.ChatEvent) record.Verdict
	CallEnter(record.ViewerSnapshot)
	CallLeave(record.ViewerSnapshot)
}

type Options struct {
	Registry   viewer.Registry
	Transcript chat.Transcript
	Callbacks  Callbacks
	Thresholds viewer.Thresholds
	Logger     *slog.Logger
	// OnWarning receives warnings after they are logged.
	OnWarning func(message string)
	// Observe receives how long each event took to route.
	Observe func(kind string, d time.Duration)
}

type Router struct {
	reg  viewer.Registry
	out  chat.Transcript
	app  Callbacks
	th   viewer.Thresholds
	log  *slog.Logger
	warn func(string)
	obs  func(string, time.Duration)

	held    bool
	pending []func()
}

func New(opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	th := opts.Thresholds
	if th == (viewer.Thresholds{}) {
		th = viewer.DefaultThresholds()
	}
	return &Router{
		reg:  opts.Registry,
		out:  opts.Transcript,
		app:  opts.Callbacks,
		th:   th,
		log:  log.With("component", "router"),
		warn: opts.OnWarning,
		obs:  opts.Observe,
	}
}

func (r *Router) Thresholds() viewer.Thresholds { return r.th }

// Bind sets the callbacks events are delivered to.
func (r *Router) Bind(app Callbacks) { r.app = app }

// Signals returns bridge signals that feed app emissions back through the
// router.
func (r *Router) Signals() bridge.Signals {
	return bridge.Signals{
		Log:              r.Log,
		Warning:          r.Warning,
		Notice:           r.Notice,
		RoomSubject:      r.RoomSubject,
		CamAccessChanged: r.CamAccessChanged,
	}
}

// Hold stops viewer events from reaching the app. Events routed while held
// wait, in order, for Release.
func (r *Router) Hold() { r.held = true }

func (r *Router) Held() bool { return r.held }

// Release delivers the events that arrived while held and returns how many
// there were.
func (r *Router) Release() int {
	r.held = false
	pending := r.pending
	r.pending = nil
	for _, deliver := range pending {
		deliver()
	}
	return len(pending)
}

// Discard drops the held events and stops holding.
func (r *Router) Discard() int {
	n := len(r.pending)
	r.held = false
	r.pending = nil
	return n
}

// queue keeps deliver for Release while held and reports whether it did.
func (r *Router) queue(deliver func()) bool {
	if !r.held {
		return false
	}
	r.pending = append(r.pending, deliver)
	return true
}

// Tip credits the viewer, shows the tip and hands it to the app. Tips have
// no verdict.
func (r *Router) Tip(ctx context.Context, v *viewer.Viewer, amount int, message string) {
	if r.queue(func() { r.Tip(ctx, v, amount, message) }) {
		return
	}
	done := r.trace(ctx, "tip", v)
	defer done()

	v.AddTip(amount)
	ev := record.Tip(v, amount, message, r.th)
	r.add(chat.NewLine(message,
		chat.From(v.Name()),
		chat.Colors(chat.TipForeground, chat.TipBackground),
		chat.Tip(amount),
	))
	if r.app != nil {
		r.app.CallTip(ev)
	}
}

// Chat routes a chat message through the app's verdict. "/debug" is
// handled here and never reaches the app.
func (r *Router) Chat(ctx context.Context, v *viewer.Viewer, message string) {
	if r.queue(func() { r.Chat(ctx, v, message) }) {
		return
	}
	done := r.trace(ctx, "chat", v)
	defer done()

	if message == "/debug" {
		text := debugOff
		if v.ToggleDebugReadable() {
			text = debugOn
		}
		r.add(chat.NewLine(text, chat.To(v.Name())))
		return
	}

	ev := record.Chat(v, message, r.th)
	verdict := record.Verdict{Allow: true, Message: ev.Message, Color: ev.Color}
	if r.app != nil {
		verdict = r.app.CallMessage(ev)
	}
	switch {
	case !verdict.Allow:
		telemetry.CountSuppressed("verdict")
		r.log.Debug("message suppressed", "user", v.Name())
		return
	case verdict.Spam:
		telemetry.CountSuppressed("spam")
		r.log.Debug("message marked as spam", "user", v.Name())
		return
	}

	bg := chat.DefaultBackground
	if verdict.HasBackground {
		var ok bool
		if bg, ok = chat.NormalizeBackground(verdict.Background); !ok {
			r.Warning(fmt.Sprintf("Message background %q is not a #RGB or #RRGGBB color; using %s.", verdict.Background, chat.DefaultBackground))
		}
	}
	r.add(chat.NewLine(verdict.Message, chat.From(v.Name()), chat.Colors("", bg), chat.Foreground(verdict.Color)))
}

func (r *Router) Enter(ctx context.Context, v *viewer.Viewer) {
	if r.queue(func() { r.Enter(ctx, v) }) {
		return
	}
	done := r.trace(ctx, "enter", v)
	defer done()
	if r.app != nil {
		r.app.CallEnter(record.Snapshot(v, r.th))
	}
}

func (r *Router) Leave(ctx context.Context, v *viewer.Viewer) {
	if r.queue(func() { r.Leave(ctx, v) }) {
		return
	}
	done := r.trace(ctx, "leave", v)
	defer done()
	if r.app != nil {
		r.app.CallLeave(record.Snapshot(v, r.th))
	}
}

// Notice shows an app notice, one line per line of the message. A group
// target wins over a user target.
func (r *Router) Notice(n bridge.Notice) {
	telemetry.CountEvent("notice")
	target := n.ToGroup
	if target == "" {
		target = n.ToUser
	}
	for _, text := range strings.Split(n.Message, "\n") {
		r.add(chat.NewLine(text,
			chat.Colors(n.Foreground, n.Background),
			chat.Weight(n.Weight),
			chat.To(target),
		))
	}
}

// CamAccessChanged updates a viewer's cam access. Unknown names are ignored.
func (r *Router) CamAccessChanged(name string, allowed bool) {
	if r.reg == nil {
		return
	}
	if v := r.reg.ByName(name); v != nil {
		v.SetCamAccess(allowed)
	}
}

func (r *Router) Log(message string) {
	r.add(chat.NewLine(message, chat.Colors(LogForeground, ""), chat.To(GroupLog)))
}

func (r *Router) RoomSubject(subject string) {
	r.add(chat.NewLine(subject,
		chat.Colors(RoomSubjectForeground, ""),
		chat.Weight(chat.WeightBold),
		chat.To(GroupRoomSubject),
	))
}

func (r *Router) Warning(message string) {
	r.log.Warn(message)
	if r.warn != nil {
		r.warn(message)
	}
}

func (r *Router) add(l chat.Line) {
	if r.out == nil {
		return
	}
	r.out.AddLine(l)
	telemetry.CountLine()
}

func (r *Router) trace(ctx context.Context, kind string, v *viewer.Viewer) func() {
	start := time.Now()
	telemetry.CountEvent(kind)
	_, span := telemetry.StartSpan(ctx, "router."+kind, attribute.String("viewer", v.Name()))
	return func() {
		took := time.Since(start)
		telemetry.ObserveEvent(kind, took.Seconds())
		if r.obs != nil {
			r.obs(kind, took)
		}
		telemetry.EndSpan(span, nil)
	}
}
