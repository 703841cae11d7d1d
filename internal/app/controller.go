package app

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/roomkit/roomkit/internal/bridge"
	"github.com/roomkit/roomkit/internal/chat"
	"github.com/roomkit/roomkit/internal/engine"
	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/settings"
	"github.com/roomkit/roomkit/internal/telemetry"
)

// CheckSyntax reads and compiles path without running it.
func (c *Context) CheckSyntax(ctx context.Context, path string) (err error) {
	_, span := telemetry.StartSpan(ctx, "app.CheckSyntax", attribute.String("path", path))
	defer func() { telemetry.EndSpan(span, err) }()

	if _, err = c.compile(path); err != nil {
		return err
	}
	c.advance(path, SyntaxChecked)
	return nil
}

// ExtractSettings runs the app once in a throwaway scope with a non-live
// bridge and returns what it assigned to cb.settings_choices. Nothing the
// app does during extraction reaches the transcript, the viewers or the
// running app. Failures are reported and returned with a nil value.
func (c *Context) ExtractSettings(ctx context.Context, path string) (_ settings.Value, err error) {
	_, span := telemetry.StartSpan(ctx, "app.ExtractSettings", attribute.String("path", path))
	defer func() { telemetry.EndSpan(span, err) }()

	prg, err := c.compile(path)
	if err != nil {
		return nil, err
	}
	c.advance(path, SyntaxChecked)

	scope := engine.NewScope(prg.Name(), c.cfg.Script.Timeout.Std())
	defer scope.Close()
	b := bridge.New(bridge.Options{Logger: c.log, RoomSlug: c.cfg.Room.Slug, Clock: c.clock})
	defer b.Reset()

	if err = b.Attach(scope); err != nil {
		c.report(err)
		return nil, err
	}
	if err = scope.Run(prg); err != nil {
		telemetry.CountScriptError("extract")
		c.report(err)
		return nil, err
	}
	choices, err := b.SettingsChoices()
	if err != nil {
		c.report(err)
		return nil, err
	}
	c.advance(path, SettingsExtracted)
	return choices, nil
}

// StartApp replaces the running app with path. Read and syntax failures
// leave the running app alone. Past that point the previous app is torn
// down; if the new one then fails to evaluate the live bridge is reset
// again so nothing it registered can receive events.
func (c *Context) StartApp(ctx context.Context, path string, values settings.Value) (err error) {
	_, span := telemetry.StartSpan(ctx, "app.StartApp", attribute.String("path", path))
	defer func() {
		telemetry.CountAppStart(err == nil)
		telemetry.EndSpan(span, err)
	}()

	prg, err := c.compile(path)
	if err != nil {
		c.fail(path, err)
		return err
	}

	c.resetLive()
	runtime.GC()

	scope := engine.NewScope(prg.Name(), c.cfg.Script.Timeout.Std())
	c.scope = scope
	c.live = path
	if err = c.bridge.Attach(scope); err == nil && values != nil {
		err = c.bridge.ApplySettings(values)
	}
	if err == nil {
		err = scope.Run(prg)
	}
	if err != nil {
		telemetry.CountScriptError("start")
		c.resetLive()
		c.fail(path, err)
		c.report(err)
		return err
	}

	if c.cfg.Chat.ClearOnStart {
		c.out.Clear()
	}
	c.out.AddLine(chat.NewLine(baseName(path) + " app has started."))
	telemetry.CountLine()

	a := c.entry(path)
	a.State = Running
	a.Err = nil
	a.RunID = uuid.NewString()
	a.StartedAt = c.clock()
	c.log.Info("app started", "path", path, "run", a.RunID)

	c.bridge.DrawPanel()
	return nil
}

// compile reads and syntax checks path. Failures are reported.
func (c *Context) compile(path string) (*engine.Program, error) {
	src, err := c.files.ReadFile(path)
	if err != nil {
		err = errdef.Wrap(errdef.CodeIO, err, "Can't open file: %s", path)
		c.report(err)
		return nil, err
	}
	prg, err := engine.Compile(filepath.Base(path), string(src))
	if err != nil {
		c.report(err)
		return nil, err
	}
	return prg, nil
}

func (c *Context) entry(path string) *App {
	a, ok := c.apps[path]
	if !ok {
		a = &App{Path: path}
		c.apps[path] = a
	}
	return a
}

// advance records extraction progress without touching a running app.
func (c *Context) advance(path string, st State) {
	a := c.entry(path)
	if a.State == Running {
		return
	}
	a.State = st
	a.Err = nil
}

func (c *Context) fail(path string, err error) {
	a := c.entry(path)
	if a.State == Running && c.live == path {
		return
	}
	a.State = Failed
	a.Err = err
}

// baseName strips the directory and every extension, so "goal.v2.js"
// becomes "goal".
func baseName(path string) string {
	name := filepath.Base(path)
	if head, _, ok := strings.Cut(name, "."); ok && head != "" {
		return head
	}
	return name
}
