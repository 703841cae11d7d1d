package engine

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/record"
	"github.com/roomkit/roomkit/internal/settings"
)

// Export copies a script value out of the runtime as a settings value.
func (s *Scope) Export(v goja.Value) (settings.Value, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return settings.Null{}, nil
	}
	out, err := settings.FromAny(v.Export())
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeValidation, err, "export value")
	}
	return out, nil
}

// Import builds a fresh script value from a settings value. The result
// shares nothing with v.
func (s *Scope) Import(v settings.Value) goja.Value {
	switch val := v.(type) {
	case nil, settings.Null:
		return goja.Null()
	case settings.List:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = s.Import(item)
		}
		return s.vm.NewArray(items...)
	case settings.Map:
		obj := s.vm.NewObject()
		for _, k := range val.Keys() {
			_ = obj.Set(k, s.Import(val[k]))
		}
		return obj
	default:
		return s.vm.ToValue(settings.ToAny(v))
	}
}

// ReadVerdict reads the app's changes back from the object its message
// handler left or returned. A missing m or c keeps the event's value; one
// that is set, even to an empty string, is taken as is.
func ReadVerdict(obj *goja.Object, allow bool, ev record.ChatEvent) record.Verdict {
	v := record.Verdict{Allow: allow, Message: ev.Message, Color: ev.Color}
	if m := obj.Get("m"); assigned(m) {
		v.Message = str(m)
	}
	if c := obj.Get("c"); assigned(c) {
		v.Color = str(c)
	}
	if spam := obj.Get("X-Spam"); spam != nil {
		v.Spam = spam.ToBoolean()
	}
	if bg := obj.Get("background"); bg != nil && !goja.IsUndefined(bg) {
		v.HasBackground = true
		v.Background = bg.String()
	}
	return v
}

func assigned(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v)
}

func str(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

// ConsoleFunc receives console output; level is log, warn or error.
type ConsoleFunc func(level, msg string)

// BindConsole installs a console object that forwards to sink.
func BindConsole(s *Scope, sink ConsoleFunc) error {
	emit := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			if sink == nil {
				return goja.Undefined()
			}
			parts := make([]string, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, arg.String())
			}
			sink(level, strings.Join(parts, " "))
			return goja.Undefined()
		}
	}
	console := map[string]func(goja.FunctionCall) goja.Value{
		"log":   emit("log"),
		"info":  emit("log"),
		"warn":  emit("warn"),
		"error": emit("error"),
	}
	return s.Install("console", console)
}
