package viewer

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/roomkit/roomkit/internal/errdef"
)

// Registry is what the host needs from viewer storage.
type Registry interface {
	Add(name string, st State) (*Viewer, error)
	ByName(name string) *Viewer
}

// MemoryRegistry keeps viewers in a map keyed by the case-folded name.
type MemoryRegistry struct {
	mu       sync.RWMutex
	viewers  map[string]*Viewer
	reserved map[string]struct{}
	watchers []func(*Viewer)
}

func NewMemoryRegistry(reserved ...string) *MemoryRegistry {
	r := &MemoryRegistry{
		viewers:  make(map[string]*Viewer),
		reserved: make(map[string]struct{}),
	}
	for _, name := range reserved {
		if key := r.key(name); key != "" {
			r.reserved[key] = struct{}{}
		}
	}
	return r
}

// Watch registers fn to be called after any viewer changes state.
func (r *MemoryRegistry) Watch(fn func(*Viewer)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.watchers = append(r.watchers, fn)
	r.mu.Unlock()
}

// Add creates a viewer. Taken or reserved names fail with a registry error.
func (r *MemoryRegistry) Add(name string, st State) (*Viewer, error) {
	name = strings.TrimSpace(name)
	key := r.key(name)
	if key == "" {
		return nil, errdef.New(errdef.CodeRegistry, "viewer name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.viewers[key]; taken {
		return nil, errdef.New(errdef.CodeRegistry, "Can't add %q. Name already exists or is reserved.", name)
	}
	if _, res := r.reserved[key]; res {
		return nil, errdef.New(errdef.CodeRegistry, "Can't add %q. Name already exists or is reserved.", name)
	}
	v := newViewer(name, st, r.notify)
	r.viewers[key] = v
	return v, nil
}

// AddReserved creates a viewer under a reserved name, used for the room owner.
func (r *MemoryRegistry) AddReserved(name string, st State) (*Viewer, error) {
	key := r.key(name)
	r.mu.Lock()
	delete(r.reserved, key)
	r.mu.Unlock()
	v, err := r.Add(name, st)
	r.mu.Lock()
	r.reserved[key] = struct{}{}
	r.mu.Unlock()
	return v, err
}

func (r *MemoryRegistry) ByName(name string) *Viewer {
	key := r.key(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.viewers[key]
}

// Remove deletes a viewer, reporting whether it existed.
func (r *MemoryRegistry) Remove(name string) bool {
	key := r.key(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.viewers[key]; !ok {
		return false
	}
	delete(r.viewers, key)
	return true
}

// Names lists viewer names sorted case-insensitively.
func (r *MemoryRegistry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.viewers))
	for _, v := range r.viewers {
		names = append(names, v.Name())
	}
	r.mu.RUnlock()
	sort.Slice(names, func(i, j int) bool {
		return r.key(names[i]) < r.key(names[j])
	})
	return names
}

func (r *MemoryRegistry) key(name string) string {
	// Casers carry state, so each lookup gets its own.
	return cases.Fold().String(strings.TrimSpace(name))
}

func (r *MemoryRegistry) notify(v *Viewer) {
	r.mu.RLock()
	watchers := append([]func(*Viewer){}, r.watchers...)
	r.mu.RUnlock()
	for _, fn := range watchers {
		fn(v)
	}
}
