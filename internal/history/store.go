// Package history keeps a bounded, file backed log of app runs.
package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roomkit/roomkit/internal/analysis"
	"github.com/roomkit/roomkit/internal/errdef"
)

const (
	ResultOK          = "ok"
	ResultFailed      = "failed"
	ResultInterrupted = "interrupted"
)

type Entry struct {
	ID        string        `json:"id"`
	App       string        `json:"app"`
	Scenario  string        `json:"scenario,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Result    string        `json:"result"`
	Error     string        `json:"error,omitempty"`
	Events    int           `json:"events"`
	Latency   []Latency     `json:"latency,omitempty"`
}

// Latency is the per-kind handler timing of one run.
type Latency struct {
	Kind  string        `json:"kind"`
	Count int           `json:"count"`
	Mean  time.Duration `json:"mean"`
	P90   time.Duration `json:"p90"`
	Max   time.Duration `json:"max"`
}

// LatencyFrom condenses timing stats for storage.
func LatencyFrom(stats []analysis.Stats) []Latency {
	if len(stats) == 0 {
		return nil
	}
	out := make([]Latency, 0, len(stats))
	for _, s := range stats {
		out = append(out, Latency{
			Kind:  s.Kind,
			Count: s.Count,
			Mean:  s.Mean,
			P90:   s.Percentiles[90],
			Max:   s.Max,
		})
	}
	return out
}

type Store struct {
	path       string
	maxEntries int
	entries    []Entry
	mu         sync.RWMutex
	loaded     bool
}

// NewStore creates a file backed history store with a bounded entry list.
func NewStore(path string, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	return &Store{path: path, maxEntries: maxEntries}
}

// Load reads the persisted history file, tolerating missing files and ensuring
// the entries are sorted newest first.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.entries = []Entry{}
	case err != nil:
		return errdef.Wrap(errdef.CodeHistory, err, "read history")
	case len(data) == 0:
		s.entries = []Entry{}
	default:
		if err := json.Unmarshal(data, &s.entries); err != nil {
			return errdef.Wrap(errdef.CodeHistory, err, "parse history")
		}
	}
	s.sortLocked()
	s.loaded = true
	return nil
}

// Append records a run, enforcing the entry limit and persisting to disk.
func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	s.entries = append([]Entry{entry}, s.entries...)
	s.sortLocked()
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[:s.maxEntries]
	}
	return s.persist()
}

// Entries returns a copy of all entries, newest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// ByApp returns the runs of apps whose base name or path matches app.
func (s *Store) ByApp(app string) []Entry {
	app = strings.TrimSpace(app)
	if app == "" {
		return s.Entries()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.App == app || strings.EqualFold(appName(e.App), appName(app)) {
			out = append(out, e)
		}
	}
	return out
}

// Delete removes an entry by id and reports whether one was removed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return false, err
	}
	idx := -1
	for i, e := range s.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	if err := s.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// persist writes the history file through a temp file and rename.
func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeIO, err, "create history dir")
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "encode history")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errdef.Wrap(errdef.CodeIO, err, "write history tmp")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errdef.Wrap(errdef.CodeIO, err, "replace history file")
	}
	return nil
}

func (s *Store) sortLocked() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].StartedAt.After(s.entries[j].StartedAt)
	})
}

func appName(p string) string {
	name := filepath.Base(p)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
