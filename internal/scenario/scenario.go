// Package scenario replays scripted room activity against a running app:
// viewers joining, chatting and tipping, with pauses in between so app
// timers get a chance to fire.
package scenario

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roomkit/roomkit/internal/duration"
	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/settings"
	"github.com/roomkit/roomkit/internal/viewer"
)

type Kind string

const (
	KindAdd     Kind = "add"
	KindEnter   Kind = "enter"
	KindLeave   Kind = "leave"
	KindChat    Kind = "chat"
	KindTip     Kind = "tip"
	KindWait    Kind = "wait"
	KindSuspend Kind = "suspend"
	KindResume  Kind = "resume"
	KindPanel   Kind = "panel"
)

// File is a decoded scenario document.
type File struct {
	// App is the script to run, relative to the scenario file.
	App      string         `yaml:"app,omitempty"`
	Settings map[string]any `yaml:"settings,omitempty"`
	Viewers  []ViewerSpec   `yaml:"viewers,omitempty"`
	Events   []Event        `yaml:"events"`
}

type ViewerSpec struct {
	Name      string `yaml:"name"`
	Gender    string `yaml:"gender,omitempty"`
	Tipped    int    `yaml:"tipped,omitempty"`
	FanClub   bool   `yaml:"fanclub,omitempty"`
	Moderator bool   `yaml:"moderator,omitempty"`
	HasTokens bool   `yaml:"has_tokens,omitempty"`
	Color     string `yaml:"color,omitempty"`
	Font      string `yaml:"font,omitempty"`
}

// State converts the viewer entry into registry state.
func (s ViewerSpec) State() (viewer.State, error) {
	st := viewer.State{
		Tipped:    s.Tipped,
		FanClub:   s.FanClub,
		Moderator: s.Moderator,
		HasTokens: s.HasTokens || s.Tipped > 0,
		TextColor: s.Color,
		Font:      s.Font,
	}
	if s.Gender != "" {
		g, ok := viewer.ParseGender(s.Gender)
		if !ok {
			return st, errdef.New(errdef.CodeScenario, "viewer %q: unknown gender %q", s.Name, s.Gender)
		}
		st.Gender = g
	}
	return st, nil
}

// Event is one step of a scenario. After delays the step; for a wait it is
// the whole step.
type Event struct {
	Type    Kind              `yaml:"type"`
	User    string            `yaml:"user,omitempty"`
	Message string            `yaml:"message,omitempty"`
	Amount  int               `yaml:"amount,omitempty"`
	After   duration.Duration `yaml:"after,omitempty"`
	Viewer  *ViewerSpec       `yaml:"viewer,omitempty"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeIO, err, "read scenario %s", path)
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeScenario, err, "%s", path)
	}
	return f, nil
}

func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errdef.Wrap(errdef.CodeScenario, err, "decode scenario")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks every event names what its kind needs.
func (f *File) Validate() error {
	seen := make(map[string]bool)
	for _, v := range f.Viewers {
		key := strings.ToLower(strings.TrimSpace(v.Name))
		if key == "" {
			return errdef.New(errdef.CodeScenario, "viewer without a name")
		}
		if seen[key] {
			return errdef.New(errdef.CodeScenario, "viewer %q listed twice", v.Name)
		}
		seen[key] = true
		if _, err := v.State(); err != nil {
			return err
		}
	}
	for i, ev := range f.Events {
		if err := ev.validate(); err != nil {
			return errdef.Wrap(errdef.CodeScenario, err, "event %d", i+1)
		}
	}
	return nil
}

func (ev Event) validate() error {
	if ev.After < 0 {
		return errdef.New(errdef.CodeScenario, "negative delay")
	}
	switch ev.Type {
	case KindEnter, KindLeave, KindChat:
		if ev.User == "" {
			return errdef.New(errdef.CodeScenario, "%s needs a user", ev.Type)
		}
	case KindTip:
		if ev.User == "" {
			return errdef.New(errdef.CodeScenario, "tip needs a user")
		}
		if ev.Amount <= 0 {
			return errdef.New(errdef.CodeScenario, "tip amount must be positive, got %d", ev.Amount)
		}
	case KindAdd:
		if ev.Viewer == nil || ev.Viewer.Name == "" {
			return errdef.New(errdef.CodeScenario, "add needs a viewer with a name")
		}
		if _, err := ev.Viewer.State(); err != nil {
			return err
		}
	case KindWait, KindSuspend, KindResume, KindPanel:
	case "":
		return errdef.New(errdef.CodeScenario, "missing type")
	default:
		return errdef.New(errdef.CodeScenario, "unknown type %q", ev.Type)
	}
	return nil
}

// Overrides returns the scenario's settings values.
func (f *File) Overrides() (settings.Map, error) {
	return toMap(f.Settings)
}

// LoadValues reads a YAML mapping of settings values.
func LoadValues(path string) (settings.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeIO, err, "read settings %s", path)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errdef.Wrap(errdef.CodeScenario, err, "parse settings %s", path)
	}
	return toMap(raw)
}

// EncodeChoices writes an app's settings declaration as YAML.
func EncodeChoices(w io.Writer, choices settings.Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(settings.ToAny(choices)); err != nil {
		return err
	}
	return enc.Close()
}

func toMap(raw map[string]any) (settings.Map, error) {
	if len(raw) == 0 {
		return settings.Map{}, nil
	}
	v, err := settings.FromAny(raw)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeScenario, err, "settings values")
	}
	m, ok := v.(settings.Map)
	if !ok {
		return nil, errdef.New(errdef.CodeScenario, "settings values must be a mapping")
	}
	return m, nil
}
