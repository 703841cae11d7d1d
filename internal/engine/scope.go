package engine

import (
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/record"
)

// maxCallStack bounds script recursion, including recursion through native
// functions and host callbacks.
const maxCallStack = 1024

// Scope is one evaluation context. Every scope owns a fresh runtime, so
// nothing defined by one app can be reached from another scope.
type Scope struct {
	name   string
	vm     *goja.Runtime
	dog    *watchdog
	depth  int
	closed bool
	seal   goja.Callable
}

// NewScope creates a runtime whose runs are bounded by timeout. A zero
// timeout disables the watchdog.
func NewScope(name string, timeout time.Duration) *Scope {
	vm := goja.New()
	vm.SetMaxCallStackSize(maxCallStack)
	s := &Scope{name: name, vm: vm, dog: newWatchdog(vm, timeout)}
	// Captured before any app code runs so a script replacing
	// Object.preventExtensions cannot unseal records.
	if obj := vm.Get("Object"); obj != nil {
		if fn, ok := goja.AssertFunction(obj.ToObject(vm).Get("preventExtensions")); ok {
			s.seal = fn
		}
	}
	return s
}

func (s *Scope) Name() string { return s.name }

// Runtime exposes the interpreter to capability builders in this module.
func (s *Scope) Runtime() *goja.Runtime { return s.vm }

// Install binds value as a global in the scope.
func (s *Scope) Install(name string, value any) error {
	if s.closed {
		return errdef.New(errdef.CodeScript, "scope %s is closed", s.name)
	}
	return s.vm.Set(name, value)
}

// Run evaluates a compiled program.
func (s *Scope) Run(p *Program) error {
	if p == nil {
		return errdef.New(errdef.CodeScript, "no program to run")
	}
	return s.guard(func() error {
		_, err := s.vm.RunProgram(p.prg)
		return err
	})
}

// Call invokes a script function with this as undefined.
func (s *Scope) Call(fn goja.Callable, args ...goja.Value) (goja.Value, error) {
	var out goja.Value
	err := s.guard(func() error {
		v, err := fn(goja.Undefined(), args...)
		out = v
		return err
	})
	return out, err
}

// Suspend freezes the watchdog, used while external instrumentation has
// halted the script. Runs that start while suspended are still timed.
func (s *Scope) Suspend() { s.dog.pause() }

func (s *Scope) Resume() { s.dog.resume() }

// Close tears the scope down. The runtime is released for collection and
// every later run fails.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.dog.disarm()
	s.vm.Interrupt("scope closed")
	s.vm = nil
	s.seal = nil
}

func (s *Scope) Closed() bool { return s.closed }

// guard runs fn under the watchdog and converts every failure, including a
// Go panic escaping a host function, into a script error.
func (s *Scope) guard(fn func() error) (err error) {
	if s.closed {
		return errdef.New(errdef.CodeScript, "scope %s is closed", s.name)
	}
	if s.depth == 0 {
		s.dog.arm()
	}
	s.depth++
	defer func() {
		s.depth--
		if r := recover(); r != nil {
			err = errdef.Wrap(errdef.CodeScript, &errdef.ScriptError{
				Message: fmt.Sprintf("panic: %v", r),
			}, "%s", s.name)
		}
		if s.depth == 0 && !s.closed {
			s.dog.disarm()
		}
	}()

	if runErr := fn(); runErr != nil {
		return errdef.Wrap(errdef.CodeScript, scriptError(runErr), "%s", s.name)
	}
	return nil
}

// Record materializes an event record as a script object. Read-only
// fields cannot be reassigned or deleted; non-extensible records are sealed
// against new properties.
func (s *Scope) Record(r record.Record) (*goja.Object, error) {
	if s.closed {
		return nil, errdef.New(errdef.CodeScript, "scope %s is closed", s.name)
	}
	obj := s.vm.NewObject()
	for _, f := range r.Fields() {
		writable := goja.FLAG_FALSE
		if f.Writable {
			writable = goja.FLAG_TRUE
		}
		if err := obj.DefineDataProperty(f.Name, s.vm.ToValue(f.Value), writable, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
			return nil, errdef.Wrap(errdef.CodeScript, err, "define %s", f.Name)
		}
	}
	if !r.Extensible() && s.seal != nil {
		if _, err := s.seal(goja.Undefined(), obj); err != nil {
			return nil, errdef.Wrap(errdef.CodeScript, err, "seal record")
		}
	}
	return obj, nil
}
