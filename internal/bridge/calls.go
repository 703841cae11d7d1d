package bridge

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/roomkit/roomkit/internal/engine"
	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/record"
	"github.com/roomkit/roomkit/internal/settings"
)

// CallTip hands a tip to the app's onTip handler, if any.
func (b *Bridge) CallTip(ev record.TipEvent) {
	b.invoke(hookTip, ev)
}

func (b *Bridge) CallEnter(ev record.ViewerSnapshot) {
	b.invoke(hookEnter, ev)
}

func (b *Bridge) CallLeave(ev record.ViewerSnapshot) {
	b.invoke(hookLeave, ev)
}

// CallMessage runs the app's onMessage handler and reads its verdict back.
// Without a handler the message passes unchanged. A handler that throws
// suppresses the message. Returning undefined allows it, any other value
// is taken for its truthiness; when that value is an object the rewritten
// fields are read from it instead of the event, falling back to the event
// for fields it lacks.
func (b *Bridge) CallMessage(ev record.ChatEvent) record.Verdict {
	pass := record.Verdict{Allow: true, Message: ev.Message, Color: ev.Color}
	fn, ok := b.handlers[hookMessage]
	if !ok || b.scope == nil {
		return pass
	}
	obj, err := b.scope.Record(ev)
	if err != nil {
		b.report(hookMessage, err)
		return record.Verdict{}
	}
	ret, err := b.scope.Call(fn, obj)
	if err != nil {
		b.report(hookMessage, err)
		return record.Verdict{}
	}
	if ret == nil || goja.IsUndefined(ret) {
		return engine.ReadVerdict(obj, true, ev)
	}
	if !ret.ToBoolean() {
		return engine.ReadVerdict(obj, false, ev)
	}
	if out, ok := ret.(*goja.Object); ok {
		return engine.ReadVerdict(out, true, ev)
	}
	return engine.ReadVerdict(obj, true, ev)
}

// DrawPanel asks the app to redraw its panel and forwards the result. A
// redraw requested from inside the panel handler is ignored.
func (b *Bridge) DrawPanel() {
	fn, ok := b.handlers[hookDrawPanel]
	if !ok || b.scope == nil || b.drawing {
		return
	}
	b.drawing = true
	defer func() { b.drawing = false }()
	ret, err := b.scope.Call(fn)
	if err != nil {
		b.report(hookDrawPanel, err)
		return
	}
	panel, err := b.scope.Export(ret)
	if err != nil {
		b.report(hookDrawPanel, err)
		return
	}
	if _, isNull := panel.(settings.Null); isNull {
		return
	}
	b.emitPanel(panel)
}

func (b *Bridge) invoke(h hook, r record.Record) {
	fn, ok := b.handlers[h]
	if !ok || b.scope == nil {
		return
	}
	obj, err := b.scope.Record(r)
	if err != nil {
		b.report(h, err)
		return
	}
	if _, err := b.scope.Call(fn, obj); err != nil {
		b.report(h, err)
	}
}

// report turns a failed handler into a log notice. The router carries on
// with the next event.
func (b *Bridge) report(h hook, err error) {
	msg := err.Error()
	if se, ok := errdef.Script(err); ok {
		msg = se.Message
	}
	b.log.Warn("handler failed", "hook", string(h), "err", err)
	b.emitLog(fmt.Sprintf("Error in %s handler: %s", h, msg))
	b.emitError(err)
}
