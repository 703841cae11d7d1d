// Package viewer holds the viewer model shared by the router, the record
// builders and the transcript, plus an in-memory registry and the tip tier
// classifier.
package viewer

import "strings"

type Gender string

const (
	GenderMale   Gender = "m"
	GenderFemale Gender = "f"
	GenderTrans  Gender = "s"
	GenderCouple Gender = "c"
)

// ParseGender accepts the single-letter codes or their long names.
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return GenderMale, true
	case "f", "female":
		return GenderFemale, true
	case "s", "trans":
		return GenderTrans, true
	case "c", "couple":
		return GenderCouple, true
	default:
		return "", false
	}
}

// State is the mutable part of a viewer. Tipped is the lifetime tip total
// the tier classifier works from.
type State struct {
	Tipped           int
	FanClub          bool
	Moderator        bool
	HasTokens        bool
	Gender           Gender
	TextColor        string
	Font             string
	DebugReadable    bool
	CamAccessAllowed bool
	RoomOwner        bool
}

// Viewer is owned by a Registry. Mutations go through methods so the
// registry can tell the transcript a viewer needs re-rendering.
type Viewer struct {
	name     string
	state    State
	onChange func(*Viewer)
}

func newViewer(name string, st State, onChange func(*Viewer)) *Viewer {
	if st.Gender == "" {
		st.Gender = GenderMale
	}
	if st.TextColor == "" {
		st.TextColor = "#494949"
	}
	if st.Font == "" {
		st.Font = "default"
	}
	return &Viewer{name: name, state: st, onChange: onChange}
}

func (v *Viewer) Name() string { return v.name }

// State returns a copy of the current state.
func (v *Viewer) State() State { return v.state }

func (v *Viewer) Tipped() int { return v.state.Tipped }
func (v *Viewer) InFanClub() bool { return v.state.FanClub }
func (v *Viewer) IsModerator() bool { return v.state.Moderator }
func (v *Viewer) HasTokens() bool { return v.state.HasTokens }
func (v *Viewer) Gender() Gender { return v.state.Gender }
func (v *Viewer) TextColor() string { return v.state.TextColor }
func (v *Viewer) Font() string { return v.state.Font }
func (v *Viewer) DebugReadable() bool { return v.state.DebugReadable }
func (v *Viewer) CamAccessAllowed() bool { return v.state.CamAccessAllowed }
func (v *Viewer) IsRoomOwner() bool { return v.state.RoomOwner }

// AddTip increases the lifetime tip total. Non-positive amounts are ignored.
func (v *Viewer) AddTip(amount int) {
	if amount <= 0 {
		return
	}
	v.state.Tipped += amount
	v.changed()
}

func (v *Viewer) SetDebugReadable(on bool) {
	if v.state.DebugReadable == on {
		return
	}
	v.state.DebugReadable = on
	v.changed()
}

// ToggleDebugReadable flips the flag and returns the new value.
func (v *Viewer) ToggleDebugReadable() bool {
	v.SetDebugReadable(!v.state.DebugReadable)
	return v.state.DebugReadable
}

func (v *Viewer) SetCamAccess(allowed bool) {
	if v.state.CamAccessAllowed == allowed {
		return
	}
	v.state.CamAccessAllowed = allowed
	v.changed()
}

func (v *Viewer) SetRoomOwner(owner bool) {
	if v.state.RoomOwner == owner {
		return
	}
	v.state.RoomOwner = owner
	v.changed()
}

func (v *Viewer) changed() {
	if v.onChange != nil {
		v.onChange(v)
	}
}
