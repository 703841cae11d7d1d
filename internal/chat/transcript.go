package chat

import "sync"

// Transcript is the chat model the host writes to.
type Transcript interface {
	AddLine(Line)
	Clear()
	// ViewerChanged tells the model a viewer's display state changed.
	ViewerChanged(name string)
}

// Memory keeps the most recent lines in a bounded ring.
type Memory struct {
	mu      sync.RWMutex
	ring    *ringBuffer
	size    int
	changed []string
}

// NewMemory allocates a transcript holding at most size lines.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 500
	}
	return &Memory{ring: newRingBuffer(size), size: size}
}

func (m *Memory) AddLine(l Line) {
	m.mu.Lock()
	m.ring.append(l)
	m.mu.Unlock()
}

func (m *Memory) Clear() {
	m.mu.Lock()
	m.ring = newRingBuffer(m.size)
	m.mu.Unlock()
}

func (m *Memory) ViewerChanged(name string) {
	m.mu.Lock()
	m.changed = append(m.changed, name)
	m.mu.Unlock()
}

// Lines returns the retained lines oldest first.
func (m *Memory) Lines() []Line {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ring.snapshot()
}

// Changed returns the viewer names reported through ViewerChanged.
func (m *Memory) Changed() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.changed...)
}

// Tee fans every call out to each transcript in order.
type Tee []Transcript

func (t Tee) AddLine(l Line) {
	for _, tr := range t {
		tr.AddLine(l)
	}
}

func (t Tee) Clear() {
	for _, tr := range t {
		tr.Clear()
	}
}

func (t Tee) ViewerChanged(name string) {
	for _, tr := range t {
		tr.ViewerChanged(name)
	}
}

type ringBuffer struct {
	items []Line
	size  int
	count int
	head  int
}

func newRingBuffer(size int) *ringBuffer {
	if size <= 0 {
		size = 1
	}
	return &ringBuffer{items: make([]Line, size), size: size}
}

// append pushes a line, evicting the oldest when capacity is reached.
func (r *ringBuffer) append(l Line) {
	if r.count < r.size {
		idx := (r.head + r.count) % r.size
		r.items[idx] = l
		r.count++
		return
	}

	r.items[r.head] = l
	r.head = (r.head + 1) % r.size
}

// snapshot returns the lines in chronological order without mutating the buffer.
func (r *ringBuffer) snapshot() []Line {
	if r.count == 0 {
		return nil
	}

	out := make([]Line, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.items[(r.head+i)%r.size]
	}
	return out
}
