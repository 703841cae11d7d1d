// Package app hosts chat apps. Context owns the live script scope, the
// live bridge and the router, and drives the app lifecycle: syntax check,
// settings extraction in a throwaway scope and live start.
package app

import (
	"log/slog"
	"os"
	"time"

	"github.com/roomkit/roomkit/internal/bridge"
	"github.com/roomkit/roomkit/internal/chat"
	"github.com/roomkit/roomkit/internal/config"
	"github.com/roomkit/roomkit/internal/engine"
	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/router"
	"github.com/roomkit/roomkit/internal/settings"
	"github.com/roomkit/roomkit/internal/telemetry"
	"github.com/roomkit/roomkit/internal/viewer"
)

type State int

const (
	Unloaded State = iota
	SyntaxChecked
	SettingsExtracted
	Running
	Failed
)

func (s State) String() string {
	switch s {
	case SyntaxChecked:
		return "syntax-checked"
	case SettingsExtracted:
		return "settings-extracted"
	case Running:
		return "running"
	case Failed:
		return "failed"
	default:
		return "unloaded"
	}
}

// App is what the host knows about one app source.
type App struct {
	Path      string
	State     State
	RunID     string
	StartedAt time.Time
	Err       error
}

type FileSource interface {
	ReadFile(path string) ([]byte, error)
}

// OSFiles reads apps from the local filesystem.
type OSFiles struct{}

func (OSFiles) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Registry is the viewer store the host needs: lookups for the router plus
// the room owner and change notifications for the transcript.
type Registry interface {
	viewer.Registry
	AddReserved(name string, st viewer.State) (*viewer.Viewer, error)
	Watch(fn func(*viewer.Viewer))
}

type Options struct {
	Config     config.Config
	Files      FileSource
	Registry   Registry
	Transcript chat.Transcript
	Logger     *slog.Logger
	// Clock feeds timer deadlines and start times. Defaults to time.Now.
	Clock func() time.Time
	// OnError receives every error the host reports: unreadable files,
	// syntax and script errors, duplicate viewers and warnings.
	OnError func(err error)
	// OnPanel receives the app's panel each time it is redrawn.
	OnPanel func(panel settings.Value)
	// OnEvent receives how long each routed event took, app callback
	// included.
	OnEvent func(kind string, d time.Duration)
}

// Context is the script host. It is not safe for concurrent use; callers
// deliver every event, timer pass and lifecycle call from one goroutine.
type Context struct {
	cfg     config.Config
	files   FileSource
	reg     Registry
	out     chat.Transcript
	log     *slog.Logger
	clock   func() time.Time
	onError func(error)

	bridge    *bridge.Bridge
	router    *router.Router
	scope     *engine.Scope
	owner     *viewer.Viewer
	apps      map[string]*App
	live      string
	suspended bool
}

func New(opts Options) (*Context, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Context{
		cfg:     cfg,
		files:   opts.Files,
		reg:     opts.Registry,
		out:     opts.Transcript,
		log:     log.With("component", "app"),
		clock:   opts.Clock,
		onError: opts.OnError,
		apps:    make(map[string]*App),
	}
	if c.files == nil {
		c.files = OSFiles{}
	}
	if c.reg == nil {
		c.reg = viewer.NewMemoryRegistry(cfg.Room.Owner)
	}
	if c.out == nil {
		c.out = chat.NewMemory(cfg.Chat.History)
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	c.reg.Watch(func(v *viewer.Viewer) { c.out.ViewerChanged(v.Name()) })

	owner, err := c.reg.AddReserved(cfg.Room.Owner, viewer.State{
		Gender:    viewer.GenderCouple,
		HasTokens: true,
		RoomOwner: true,
	})
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeRegistry, err, "add room owner")
	}
	c.owner = owner

	c.router = router.New(router.Options{
		Registry:   c.reg,
		Transcript: c.out,
		Thresholds: cfg.Tiers,
		Logger:     log,
		Observe:    opts.OnEvent,
		OnWarning: func(msg string) {
			c.emitError(errdef.New(errdef.CodeValidation, "%s", msg))
		},
	})
	signals := c.router.Signals()
	signals.PanelRedraw = opts.OnPanel
	signals.Error = func(err error) {
		telemetry.CountScriptError("callback")
		c.emitError(err)
	}
	c.bridge = bridge.New(bridge.Options{
		Live:     true,
		Signals:  signals,
		Logger:   log,
		RoomSlug: cfg.Room.Slug,
		Clock:    c.clock,
	})
	c.router.Bind(c.bridge)
	return c, nil
}

func (c *Context) Router() *router.Router { return c.router }

func (c *Context) Transcript() chat.Transcript { return c.out }

func (c *Context) Owner() *viewer.Viewer { return c.owner }

func (c *Context) Config() config.Config { return c.cfg }

// App returns what the host knows about path.
func (c *Context) App(path string) App {
	if a, ok := c.apps[path]; ok {
		return *a
	}
	return App{Path: path, State: Unloaded}
}

// Live returns the running app, if any.
func (c *Context) Live() (App, bool) {
	if c.live == "" {
		return App{}, false
	}
	return c.App(c.live), true
}

// Viewer looks a viewer up by name.
func (c *Context) Viewer(name string) *viewer.Viewer { return c.reg.ByName(name) }

// AddViewer registers a viewer. A taken or reserved name is reported and
// returned; the host keeps running.
func (c *Context) AddViewer(name string, st viewer.State) (*viewer.Viewer, error) {
	v, err := c.reg.Add(name, st)
	if err != nil {
		c.report(err)
		return nil, err
	}
	c.log.Debug("viewer added", "name", v.Name())
	return v, nil
}

// OnSuspend freezes the app while external instrumentation holds it: no
// timer fires, viewer events wait in the router and the watchdog stops
// counting until OnResume.
func (c *Context) OnSuspend() {
	if c.suspended {
		return
	}
	c.suspended = true
	c.router.Hold()
	c.bridge.PauseTimers(c.clock())
	if c.scope != nil {
		c.scope.Suspend()
	}
	c.log.Debug("suspended")
}

func (c *Context) OnResume() {
	if !c.suspended {
		return
	}
	c.suspended = false
	c.bridge.ResumeTimers(c.clock())
	if c.scope != nil {
		c.scope.Resume()
	}
	n := c.router.Release()
	c.log.Debug("resumed", "held_events", n)
}

func (c *Context) Suspended() bool { return c.suspended }

// RunTimers fires the app's due timers.
func (c *Context) RunTimers(now time.Time) int {
	if c.suspended {
		return 0
	}
	return c.bridge.RunTimers(now)
}

// NextTimer reports when the earliest app timer is due.
func (c *Context) NextTimer() (time.Time, bool) {
	if c.suspended {
		return time.Time{}, false
	}
	return c.bridge.NextTimer()
}

// DrawPanel asks the running app to redraw its panel. Nothing is drawn
// while suspended.
func (c *Context) DrawPanel() {
	if c.suspended {
		return
	}
	c.bridge.DrawPanel()
}

// Close stops the running app.
func (c *Context) Close() {
	c.resetLive()
}

func (c *Context) resetLive() {
	c.bridge.Reset()
	if c.scope != nil {
		c.scope.Close()
		c.scope = nil
	}
	if a, ok := c.apps[c.live]; ok && a.State == Running {
		a.State = Unloaded
	}
	c.live = ""
	c.suspended = false
	if n := c.router.Discard(); n > 0 {
		c.log.Debug("held events dropped", "count", n)
	}
}

// report logs err and forwards it to the host error sink.
func (c *Context) report(err error) {
	if err == nil {
		return
	}
	c.log.Error(errdef.Message(err), "code", errdef.CodeOf(err))
	c.emitError(err)
}

func (c *Context) emitError(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}
