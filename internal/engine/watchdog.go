package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
)

type timeoutError struct {
	limit time.Duration
}

func (e timeoutError) Error() string {
	return fmt.Sprintf("script exceeded time limit of %s", e.limit)
}

// watchdog interrupts a runtime once a run has used up its budget. The
// budget of a run in progress stops draining while the watchdog is paused.
type watchdog struct {
	mu        sync.Mutex
	vm        *goja.Runtime
	limit     time.Duration
	remaining time.Duration
	started   time.Time
	timer     *time.Timer
	armed     bool
	paused    bool
}

func newWatchdog(vm *goja.Runtime, limit time.Duration) *watchdog {
	return &watchdog{vm: vm, limit: limit}
}

func (w *watchdog) arm() {
	if w.limit <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.armed = true
	w.remaining = w.limit
	// A run entered while paused is not the one being held.
	w.startLocked()
}

func (w *watchdog) disarm() {
	if w.limit <= 0 {
		return
	}
	w.mu.Lock()
	w.armed = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	w.vm.ClearInterrupt()
}

func (w *watchdog) pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.paused {
		return
	}
	w.paused = true
	if w.armed && w.timer != nil && w.timer.Stop() {
		w.remaining -= time.Since(w.started)
		w.timer = nil
	}
}

func (w *watchdog) resume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.paused {
		return
	}
	w.paused = false
	if w.armed && w.timer == nil {
		w.startLocked()
	}
}

func (w *watchdog) startLocked() {
	if w.remaining <= 0 {
		w.remaining = time.Millisecond
	}
	w.started = time.Now()
	vm, limit := w.vm, w.limit
	w.timer = time.AfterFunc(w.remaining, func() {
		vm.Interrupt(timeoutError{limit: limit})
	})
}
