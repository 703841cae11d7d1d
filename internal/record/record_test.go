package record

import (
	"testing"

	"github.com/roomkit/roomkit/internal/viewer"
)

func fieldMap(fields []Field) map[string]Field {
	out := make(map[string]Field, len(fields))
	for _, f := range fields {
		out[f.Name] = f
	}
	return out
}

func TestTipFieldsArePrefixedAndReadOnly(t *testing.T) {
	reg := viewer.NewMemoryRegistry()
	v, err := reg.Add("alice", viewer.State{FanClub: true, Tipped: 60, Gender: viewer.GenderFemale})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	ev := Tip(v, 25, "hi", viewer.DefaultThresholds())
	got := fieldMap(ev.Fields())

	want := map[string]any{
		"amount":                         25,
		"message":                        "hi",
		"from_user":                      "alice",
		"from_user_in_fanclub":           true,
		"from_user_has_tokens":           false,
		"from_user_is_mod":               false,
		"from_user_tipped_recently":      true,
		"from_user_tipped_alot_recently": true,
		"from_user_tipped_tons_recently": false,
		"from_user_gender":               "f",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(got))
	}
	for name, val := range want {
		f, ok := got[name]
		if !ok {
			t.Fatalf("missing field %q", name)
		}
		if f.Value != val {
			t.Fatalf("field %q: expected %v, got %v", name, val, f.Value)
		}
		if f.Writable {
			t.Fatalf("field %q must be read-only", name)
		}
	}
	if ev.Extensible() {
		t.Fatalf("tip events must not be extensible")
	}
}

func TestSnapshotIsDetachedFromViewer(t *testing.T) {
	reg := viewer.NewMemoryRegistry()
	v, _ := reg.Add("bob", viewer.State{})
	th := viewer.DefaultThresholds()
	before := Snapshot(v, th)
	v.AddTip(300)
	if before.Tiers.Recently {
		t.Fatalf("snapshot must not observe later tips")
	}
	after := Snapshot(v, th)
	if !after.Tiers.Tons {
		t.Fatalf("fresh snapshot must reclassify the new total")
	}
}

func TestChatFieldsWritableSubset(t *testing.T) {
	reg := viewer.NewMemoryRegistry()
	v, _ := reg.Add("carol", viewer.State{TextColor: "#112233", Font: "Arial"})
	ev := Chat(v, "hello", viewer.DefaultThresholds())
	got := fieldMap(ev.Fields())
	for _, name := range []string{"c", "m", "f"} {
		if !got[name].Writable {
			t.Fatalf("field %q must be writable", name)
		}
	}
	if got["user"].Writable || got["is_mod"].Writable {
		t.Fatalf("viewer fields must stay read-only")
	}
	if got["c"].Value != "#112233" || got["f"].Value != "Arial" || got["m"].Value != "hello" {
		t.Fatalf("unexpected chat fields %+v", got)
	}
	if !ev.Extensible() {
		t.Fatalf("chat events accept background and X-Spam from the app")
	}
}
