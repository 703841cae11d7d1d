// Package watcher polls app files and reports when they change on disk.
package watcher

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

type EventKind int

const (
	EventChanged EventKind = iota + 1
	EventMissing
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// Snapshot is what the watcher last saw of a file.
type Snapshot struct {
	ModTime time.Time
	Size    int64
	Hash    uint64
}

type Event struct {
	Path string
	Kind EventKind
	Prev Snapshot
	Curr Snapshot
}

type Options struct {
	Interval time.Duration
	// HashUnchanged rehashes files whose size and mod time did not move.
	HashUnchanged bool
	// Buffer is the event channel capacity. Defaults to 16.
	Buffer int
}

type entry struct {
	snap    Snapshot
	missing bool
}

type Watcher struct {
	interval time.Duration
	rehash   bool

	mu    sync.Mutex
	files map[string]*entry

	events chan Event
	done   chan struct{}
	start  sync.Once
	stop   sync.Once
	wg     sync.WaitGroup
}

func New(opts Options) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	buf := opts.Buffer
	if buf <= 0 {
		buf = 16
	}
	return &Watcher{
		interval: interval,
		rehash:   opts.HashUnchanged,
		files:    make(map[string]*entry),
		events:   make(chan Event, buf),
		done:     make(chan struct{}),
	}
}

func (w *Watcher) Events() <-chan Event { return w.events }

// Track records data as the current content of path. Tracking a file the
// caller just read or wrote keeps that content from being reported.
func (w *Watcher) Track(path string, data []byte) {
	snap := Snapshot{Hash: xxhash.Sum64(data), Size: int64(len(data))}
	if info, err := os.Stat(path); err == nil {
		snap.ModTime = info.ModTime()
		snap.Size = info.Size()
	}
	w.mu.Lock()
	w.files[path] = &entry{snap: snap}
	w.mu.Unlock()
}

func (w *Watcher) Untrack(path string) {
	w.mu.Lock()
	delete(w.files, path)
	w.mu.Unlock()
}

// Start polls every interval until Stop.
func (w *Watcher) Start() {
	w.start.Do(func() {
		w.wg.Add(1)
		go w.loop()
	})
}

func (w *Watcher) Stop() {
	w.stop.Do(func() { close(w.done) })
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.Scan()
		}
	}
}

// Scan checks every tracked file once. A file that goes missing is
// reported once; when it comes back it is reported as changed.
func (w *Watcher) Scan() {
	w.mu.Lock()
	var out []Event
	for path, e := range w.files {
		if ev, ok := w.check(path, e); ok {
			out = append(out, ev)
		}
	}
	w.mu.Unlock()

	for _, ev := range out {
		select {
		case w.events <- ev:
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) check(path string, e *entry) (Event, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !e.missing {
			e.missing = true
			return Event{Path: path, Kind: EventMissing, Prev: e.snap}, true
		}
		return Event{}, false
	}

	curr := Snapshot{ModTime: info.ModTime(), Size: info.Size()}
	same := curr.ModTime.Equal(e.snap.ModTime) && curr.Size == e.snap.Size
	if same && !e.missing && !w.rehash {
		return Event{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Event{}, false
	}
	curr.Hash = xxhash.Sum64(data)

	prev := e.snap
	reappeared := e.missing
	e.snap = curr
	e.missing = false
	if !reappeared && curr.Hash == prev.Hash {
		return Event{}, false
	}
	return Event{Path: path, Kind: EventChanged, Prev: prev, Curr: curr}, true
}
