package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roomkit/roomkit/internal/errdef"
)

// Choice is one entry of an app's settings_choices declaration.
type Choice struct {
	Name     string
	Type     string
	Label    string
	Required bool
	Default  Value
	Min      *float64
	Max      *float64
	MaxLen   int
	Options  []string
}

// ParseChoices reads the declaration list an app assigned to
// cb.settings_choices. Entries without a name are skipped.
func ParseChoices(v Value) []Choice {
	list, ok := v.(List)
	if !ok {
		return nil
	}
	var out []Choice
	for _, item := range list {
		m, ok := item.(Map)
		if !ok {
			continue
		}
		name := strings.TrimSpace(Text(m["name"]))
		if name == "" {
			continue
		}
		c := Choice{
			Name:     name,
			Type:     strings.ToLower(strings.TrimSpace(Text(m["type"]))),
			Label:    Text(m["label"]),
			Required: true,
		}
		if req, ok := m["required"].(Bool); ok {
			c.Required = bool(req)
		}
		if def, ok := m["defaultValue"]; ok {
			c.Default = def
		} else if def, ok := m["default"]; ok {
			c.Default = def
		}
		if n, ok := m["minValue"].(Number); ok {
			f := float64(n)
			c.Min = &f
		}
		if n, ok := m["maxValue"].(Number); ok {
			f := float64(n)
			c.Max = &f
		}
		if n, ok := m["maxLength"].(Number); ok {
			c.MaxLen = int(n)
		}
		for i := 1; ; i++ {
			opt, ok := m["choice"+strconv.Itoa(i)]
			if !ok {
				break
			}
			c.Options = append(c.Options, Text(opt))
		}
		out = append(out, c)
	}
	return out
}

// Defaults returns the default values declared by choices.
func Defaults(choices []Choice) Map {
	out := make(Map, len(choices))
	for _, c := range choices {
		if c.Default != nil {
			out[c.Name] = c.Default
		}
	}
	return out
}

// Merge overlays scopes left to right into a new map.
func Merge(scopes ...Map) Map {
	out := make(Map)
	for _, scope := range scopes {
		for k, v := range scope {
			out[k] = v
		}
	}
	return out
}

// Resolve fills defaults, applies overrides and checks the result against
// the declared choices. Unknown override keys are kept as-is.
func Resolve(choices []Choice, overrides Map) (Map, error) {
	values := Merge(Defaults(choices), overrides)
	for _, c := range choices {
		v, ok := values[c.Name]
		if !ok || isBlank(v) {
			if c.Required {
				return nil, errdef.New(errdef.CodeValidation, "setting %q is required", c.Name)
			}
			continue
		}
		coerced, err := c.coerce(v)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeValidation, err, "setting %q", c.Name)
		}
		values[c.Name] = coerced
	}
	return values, nil
}

func (c Choice) coerce(v Value) (Value, error) {
	switch c.Type {
	case "int":
		var n float64
		switch val := v.(type) {
		case Number:
			n = float64(val)
		case String:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
			if err != nil {
				return nil, fmt.Errorf("expected a number, got %q", string(val))
			}
			n = parsed
		default:
			return nil, fmt.Errorf("expected a number")
		}
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("expected an integer, got %v", n)
		}
		if c.Min != nil && n < *c.Min {
			return nil, fmt.Errorf("%v is below the minimum %v", n, *c.Min)
		}
		if c.Max != nil && n > *c.Max {
			return nil, fmt.Errorf("%v is above the maximum %v", n, *c.Max)
		}
		return Number(n), nil
	case "choice":
		s := Text(v)
		for _, opt := range c.Options {
			if opt == s {
				return String(s), nil
			}
		}
		return nil, fmt.Errorf("%q is not one of %v", s, c.Options)
	case "str", "":
		s := Text(v)
		if c.MaxLen > 0 && len([]rune(s)) > c.MaxLen {
			return nil, fmt.Errorf("longer than %d characters", c.MaxLen)
		}
		return String(s), nil
	default:
		return v, nil
	}
}

func isBlank(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return true
	case String:
		return strings.TrimSpace(string(val)) == ""
	default:
		return false
	}
}
