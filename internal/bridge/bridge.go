// Package bridge implements the cb capability object apps talk to. A live
// bridge forwards everything the app emits to the host through Signals; a
// disposable bridge, used for settings extraction, accepts the same calls
// and drops them.
package bridge

import (
	"log/slog"
	"time"

	"github.com/dop251/goja"

	"github.com/roomkit/roomkit/internal/engine"
	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/settings"
)

// Notice is one cb.sendNotice call. Empty fields take the router defaults.
type Notice struct {
	Message    string
	ToUser     string
	Background string
	Foreground string
	Weight     string
	ToGroup    string
}

// Signals are the host hooks a live bridge calls. Nil fields are skipped.
type Signals struct {
	Log              func(message string)
	Warning          func(message string)
	Notice           func(n Notice)
	RoomSubject      func(subject string)
	CamAccessChanged func(name string, allowed bool)
	PanelRedraw      func(panel settings.Value)
	Error            func(err error)
}

type Options struct {
	// Live bridges emit signals and keep timers. Extraction uses a
	// non-live bridge.
	Live     bool
	Signals  Signals
	Logger   *slog.Logger
	RoomSlug string
	// Clock stamps timer deadlines. Defaults to time.Now.
	Clock func() time.Time
}

type hook string

const (
	hookTip       hook = "onTip"
	hookMessage   hook = "onMessage"
	hookEnter     hook = "onEnter"
	hookLeave     hook = "onLeave"
	hookDrawPanel hook = "onDrawPanel"
)

type Bridge struct {
	opts     Options
	log      *slog.Logger
	scope    *engine.Scope
	obj      *goja.Object
	handlers map[hook]goja.Callable
	settings settings.Value
	timers   timerQueue
	cam      camLimit
	drawing  bool
}

func New(opts Options) *Bridge {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		opts:     opts,
		log:      log.With("component", "bridge", "live", opts.Live),
		handlers: make(map[hook]goja.Callable),
	}
}

func (b *Bridge) Live() bool { return b.opts.Live }

// Attach installs cb, cbjs and console into s. The bridge dispatches
// callbacks into s until the next Reset.
func (b *Bridge) Attach(s *engine.Scope) error {
	if s == nil || s.Closed() {
		return errdef.New(errdef.CodeScript, "attach bridge: no scope")
	}
	b.scope = s
	obj, err := b.buildCB()
	if err != nil {
		b.scope = nil
		return err
	}
	b.obj = obj
	if err := s.Install("cb", obj); err != nil {
		return errdef.Wrap(errdef.CodeScript, err, "install cb")
	}
	if err := s.Install("cbjs", b.buildCBJS()); err != nil {
		return errdef.Wrap(errdef.CodeScript, err, "install cbjs")
	}
	return engine.BindConsole(s, func(level, msg string) {
		b.log.Debug("console", "level", level, "msg", msg)
		b.emitLog(msg)
	})
}

// Reset drops every registered callback, pending timer, settings value and
// cam limit, and detaches from the current scope.
func (b *Bridge) Reset() {
	for name := range b.handlers {
		delete(b.handlers, name)
	}
	b.timers.clear()
	for _, name := range b.cam.clear() {
		b.emitCamAccess(name, false)
	}
	b.settings = nil
	b.scope = nil
	b.obj = nil
}

// ApplySettings sets cb.settings. The app sees a fresh copy.
func (b *Bridge) ApplySettings(v settings.Value) error {
	if v == nil {
		v = settings.Map{}
	}
	b.settings = v
	if b.obj == nil {
		return nil
	}
	if err := b.obj.Set("settings", b.scope.Import(v)); err != nil {
		return errdef.Wrap(errdef.CodeScript, err, "apply settings")
	}
	return nil
}

// SettingsChoices reads back whatever the app assigned to
// cb.settings_choices. An app that declares nothing yields Null.
func (b *Bridge) SettingsChoices() (settings.Value, error) {
	if b.obj == nil {
		return settings.Null{}, nil
	}
	return b.scope.Export(b.obj.Get("settings_choices"))
}

// Registered reports whether the app installed a handler for name, e.g.
// "onMessage".
func (b *Bridge) Registered(name string) bool {
	_, ok := b.handlers[hook(name)]
	return ok
}

func (b *Bridge) emitLog(msg string) {
	if b.opts.Live && b.opts.Signals.Log != nil {
		b.opts.Signals.Log(msg)
	}
}

func (b *Bridge) emitWarning(msg string) {
	if b.opts.Live && b.opts.Signals.Warning != nil {
		b.opts.Signals.Warning(msg)
	}
}

func (b *Bridge) emitNotice(n Notice) {
	if b.opts.Live && b.opts.Signals.Notice != nil {
		b.opts.Signals.Notice(n)
	}
}

func (b *Bridge) emitRoomSubject(subject string) {
	if b.opts.Live && b.opts.Signals.RoomSubject != nil {
		b.opts.Signals.RoomSubject(subject)
	}
}

func (b *Bridge) emitCamAccess(name string, allowed bool) {
	if b.opts.Live && b.opts.Signals.CamAccessChanged != nil {
		b.opts.Signals.CamAccessChanged(name, allowed)
	}
}

func (b *Bridge) emitPanel(panel settings.Value) {
	if b.opts.Live && b.opts.Signals.PanelRedraw != nil {
		b.opts.Signals.PanelRedraw(panel)
	}
}

func (b *Bridge) emitError(err error) {
	if b.opts.Live && b.opts.Signals.Error != nil {
		b.opts.Signals.Error(err)
	}
}
