package bridge

import (
	"time"

	"github.com/dop251/goja"
)

type timer struct {
	id  int64
	due time.Time
	fn  goja.Callable
}

// timerQueue holds the app's cb.setTimeout callbacks. Nothing fires on its
// own: the host loop calls RunTimers.
type timerQueue struct {
	next     int64
	pending  []*timer
	paused   bool
	pausedAt time.Time
}

func (q *timerQueue) add(fn goja.Callable, now time.Time, ms int64) int64 {
	if ms < 0 {
		ms = 0
	}
	q.next++
	due := now.Add(time.Duration(ms) * time.Millisecond)
	if q.paused {
		// Resume shifts every deadline by the paused span; start from the
		// pause point so this one is not shifted twice.
		due = q.pausedAt.Add(time.Duration(ms) * time.Millisecond)
	}
	q.pending = append(q.pending, &timer{id: q.next, due: due, fn: fn})
	return q.next
}

func (q *timerQueue) cancel(id int64) {
	for i, t := range q.pending {
		if t.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

func (q *timerQueue) clear() {
	q.pending = nil
	q.paused = false
	q.pausedAt = time.Time{}
}

// popDue removes and returns the earliest timer due at now whose id is at
// most limit. Ties go to the lower id.
func (q *timerQueue) popDue(now time.Time, limit int64) *timer {
	best := -1
	for i, t := range q.pending {
		if t.id > limit || t.due.After(now) {
			continue
		}
		if best < 0 || t.due.Before(q.pending[best].due) ||
			(t.due.Equal(q.pending[best].due) && t.id < q.pending[best].id) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	t := q.pending[best]
	q.pending = append(q.pending[:best], q.pending[best+1:]...)
	return t
}

// RunTimers fires every timer due at now, earliest first, and returns how
// many ran. Timers scheduled by those callbacks wait for the next call.
// Nothing fires while timers are paused.
func (b *Bridge) RunTimers(now time.Time) int {
	q := &b.timers
	if q.paused || b.scope == nil {
		return 0
	}
	limit := q.next
	fired := 0
	for {
		t := q.popDue(now, limit)
		if t == nil {
			return fired
		}
		fired++
		if _, err := b.scope.Call(t.fn); err != nil {
			b.report("setTimeout", err)
		}
		if q.paused || b.scope == nil {
			return fired
		}
	}
}

// NextTimer reports the earliest pending deadline.
func (b *Bridge) NextTimer() (time.Time, bool) {
	q := &b.timers
	if q.paused || len(q.pending) == 0 {
		return time.Time{}, false
	}
	next := q.pending[0].due
	for _, t := range q.pending[1:] {
		if t.due.Before(next) {
			next = t.due
		}
	}
	return next, true
}

func (b *Bridge) PendingTimers() int { return len(b.timers.pending) }

// PauseTimers freezes every timer at now. The time spent paused is added
// back on ResumeTimers so each timer keeps its remaining delay.
func (b *Bridge) PauseTimers(now time.Time) {
	q := &b.timers
	if q.paused {
		return
	}
	q.paused = true
	q.pausedAt = now
}

func (b *Bridge) ResumeTimers(now time.Time) {
	q := &b.timers
	if !q.paused {
		return
	}
	span := now.Sub(q.pausedAt)
	if span < 0 {
		span = 0
	}
	for _, t := range q.pending {
		t.due = t.due.Add(span)
	}
	q.paused = false
	q.pausedAt = time.Time{}
}

func (b *Bridge) TimersPaused() bool { return b.timers.paused }
