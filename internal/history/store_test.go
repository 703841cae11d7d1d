package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roomkit/roomkit/internal/analysis"
)

func entryAt(id, app string, at time.Time) Entry {
	return Entry{ID: id, App: app, StartedAt: at, Result: ResultOK}
}

func TestAppendPersistsNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s := NewStore(path, 10)
	if err := s.Append(entryAt("a", "apps/goal.js", base)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(entryAt("b", "apps/goal.js", base.Add(time.Hour))); err != nil {
		t.Fatalf("append: %v", err)
	}

	reloaded := NewStore(path, 10)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := reloaded.Entries()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("expected b then a, got %+v", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestAppendEnforcesLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(path, 2)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.Append(entryAt(id, "x.js", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}
	got := s.Entries()
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("expected the two newest runs, got %+v", got)
	}
}

func TestByAppMatchesPathOrName(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "history.json"), 10)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = s.Append(entryAt("a", "apps/goal.js", base))
	_ = s.Append(entryAt("b", "other/Goal.js", base.Add(time.Second)))
	_ = s.Append(entryAt("c", "apps/bingo.js", base.Add(2*time.Second)))

	if got := s.ByApp("goal"); len(got) != 2 {
		t.Fatalf("expected two goal runs, got %+v", got)
	}
	if got := s.ByApp("apps/bingo.js"); len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("expected the bingo run, got %+v", got)
	}
	if got := s.ByApp(""); len(got) != 3 {
		t.Fatalf("expected every run, got %d", len(got))
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := NewStore(path, 10)
	_ = s.Append(entryAt("a", "x.js", time.Now()))

	ok, err := s.Delete("a")
	if err != nil || !ok {
		t.Fatalf("expected delete, got %v %v", ok, err)
	}
	ok, err = s.Delete("a")
	if err != nil || ok {
		t.Fatalf("expected nothing to delete, got %v %v", ok, err)
	}
	reloaded := NewStore(path, 10)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := len(reloaded.Entries()); n != 0 {
		t.Fatalf("expected empty history, got %d", n)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := NewStore(path, 10).Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLatencyFrom(t *testing.T) {
	stats := []analysis.Stats{{
		Kind:        "tip",
		Count:       3,
		Mean:        time.Millisecond,
		Max:         3 * time.Millisecond,
		Percentiles: map[int]time.Duration{90: 2 * time.Millisecond},
	}}
	got := LatencyFrom(stats)
	if len(got) != 1 || got[0].Kind != "tip" || got[0].P90 != 2*time.Millisecond || got[0].Max != 3*time.Millisecond {
		t.Fatalf("unexpected latency %+v", got)
	}
	if LatencyFrom(nil) != nil {
		t.Fatalf("expected nil for no stats")
	}
}
