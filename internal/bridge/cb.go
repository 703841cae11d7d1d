package bridge

import (
	"strconv"

	"github.com/dop251/goja"

	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/settings"
)

func (b *Bridge) buildCB() (*goja.Object, error) {
	vm := b.scope.Runtime()
	obj := vm.NewObject()

	api := map[string]any{
		"onTip":       b.register(vm, hookTip),
		"onMessage":   b.register(vm, hookMessage),
		"onEnter":     b.register(vm, hookEnter),
		"onLeave":     b.register(vm, hookLeave),
		"onDrawPanel": b.register(vm, hookDrawPanel),
		"drawPanel": func() {
			b.DrawPanel()
		},
		"log": func(call goja.FunctionCall) goja.Value {
			b.emitLog(call.Argument(0).String())
			return goja.Undefined()
		},
		"sendNotice": b.sendNotice,
		"chatNotice": b.sendNotice,
		"changeRoomSubject": func(subject string) {
			b.emitRoomSubject(subject)
		},
		"setTimeout": func(call goja.FunctionCall) goja.Value {
			fn, ok := goja.AssertFunction(call.Argument(0))
			if !ok {
				panic(vm.NewTypeError("cb.setTimeout requires a function"))
			}
			ms := call.Argument(1).ToInteger()
			if !b.opts.Live {
				return vm.ToValue(0)
			}
			return vm.ToValue(b.timers.add(fn, b.opts.Clock(), ms))
		},
		"cancelTimeout": func(call goja.FunctionCall) goja.Value {
			b.timers.cancel(call.Argument(0).ToInteger())
			return goja.Undefined()
		},
	}
	for name, fn := range b.limitCamAPI(vm) {
		api[name] = fn
	}
	for name, fn := range api {
		if err := obj.Set(name, fn); err != nil {
			return nil, errdef.Wrap(errdef.CodeScript, err, "bind cb.%s", name)
		}
	}

	settingsValue := b.settings
	if settingsValue == nil {
		settingsValue = settings.Map{}
	}
	if err := obj.Set("settings", b.scope.Import(settingsValue)); err != nil {
		return nil, errdef.Wrap(errdef.CodeScript, err, "bind cb.settings")
	}
	if err := obj.Set("settings_choices", vm.NewArray()); err != nil {
		return nil, errdef.Wrap(errdef.CodeScript, err, "bind cb.settings_choices")
	}
	if err := obj.DefineDataProperty("room_slug", vm.ToValue(b.opts.RoomSlug), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		return nil, errdef.Wrap(errdef.CodeScript, err, "bind cb.room_slug")
	}
	return obj, nil
}

// register returns the cb.onX setter for h. A later call replaces the
// earlier handler.
func (b *Bridge) register(vm *goja.Runtime, h hook) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("cb.%s requires a function", string(h)))
		}
		b.handlers[h] = fn
		b.log.Debug("handler registered", "hook", string(h))
		return goja.Undefined()
	}
}

func (b *Bridge) sendNotice(call goja.FunctionCall) goja.Value {
	b.emitNotice(Notice{
		Message:    optString(call.Argument(0)),
		ToUser:     optString(call.Argument(1)),
		Background: optString(call.Argument(2)),
		Foreground: optString(call.Argument(3)),
		Weight:     optString(call.Argument(4)),
		ToGroup:    optString(call.Argument(5)),
	})
	return goja.Undefined()
}

func optString(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

// buildCBJS returns the cbjs helper object.
func (b *Bridge) buildCBJS() map[string]any {
	vm := b.scope.Runtime()
	return map[string]any{
		"arrayContains": func(call goja.FunctionCall) goja.Value {
			arr, ok := call.Argument(0).(*goja.Object)
			if !ok {
				return vm.ToValue(false)
			}
			return vm.ToValue(indexOf(arr, call.Argument(1), arrayLen(arr)) >= 0)
		},
		"arrayRemove": func(call goja.FunctionCall) goja.Value {
			arr, ok := call.Argument(0).(*goja.Object)
			if !ok {
				return call.Argument(0)
			}
			splice, ok := goja.AssertFunction(arr.Get("splice"))
			if !ok {
				return arr
			}
			target := call.Argument(1)
			for i := arrayLen(arr) - 1; i >= 0; i-- {
				if el := arr.Get(strconv.FormatInt(i, 10)); el != nil && el.StrictEquals(target) {
					if _, err := splice(arr, vm.ToValue(i), vm.ToValue(1)); err != nil {
						panic(err)
					}
				}
			}
			return arr
		},
	}
}

func arrayLen(arr *goja.Object) int64 {
	n := arr.Get("length")
	if n == nil {
		return 0
	}
	return n.ToInteger()
}

func indexOf(arr *goja.Object, target goja.Value, n int64) int64 {
	for i := int64(0); i < n; i++ {
		if el := arr.Get(strconv.FormatInt(i, 10)); el != nil && el.StrictEquals(target) {
			return i
		}
	}
	return -1
}
