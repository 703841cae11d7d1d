package settings

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Value is a schema-less settings value. Apps define the shape of their
// settings entirely in script, so the host only ever sees this tagged union.
// Only Null, Bool, Number, String, List and Map implement it.
type Value interface {
	settingsValue()
}

type Null struct{}

func (Null) settingsValue() {}

type Bool bool

func (Bool) settingsValue() {}

type Number float64

func (Number) settingsValue() {}

type String string

func (String) settingsValue() {}

type List []Value

func (List) settingsValue() {}

type Map map[string]Value

func (Map) settingsValue() {}

// Keys returns the map keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromAny converts decoded data (engine exports, YAML, TOML) into a Value.
func FromAny(in any) (Value, error) {
	switch v := in.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Number(v), nil
	case int32:
		return Number(v), nil
	case int64:
		return Number(v), nil
	case uint64:
		return Number(v), nil
	case float32:
		return Number(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("settings: non-finite number %v", v)
		}
		return Number(v), nil
	case []any:
		out := make(List, 0, len(v))
		for idx, item := range v {
			conv, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", idx, err)
			}
			out = append(out, conv)
		}
		return out, nil
	case []map[string]any:
		out := make(List, 0, len(v))
		for idx, item := range v {
			conv, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", idx, err)
			}
			out = append(out, conv)
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(v))
		for key, item := range v {
			conv, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = conv
		}
		return out, nil
	case map[any]any:
		out := make(Map, len(v))
		for key, item := range v {
			name := fmt.Sprint(key)
			conv, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", name, err)
			}
			out[name] = conv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("settings: unsupported value of type %T", in)
	}
}

// ToAny converts a Value back into plain Go data suitable for handing to the
// script engine or an encoder. Every call returns freshly allocated
// containers so callers never share state with the Value.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(val)
	case Number:
		return float64(val)
	case String:
		return string(val)
	case List:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToAny(item)
		}
		return out
	case Map:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = ToAny(item)
		}
		return out
	default:
		return nil
	}
}

// Equal reports deep equality of two values.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, item := range av {
			other, found := bv[k]
			if !found || !Equal(item, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Text renders scalars the way a script would coerce them.
func Text(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return ""
	case Bool:
		return strconv.FormatBool(bool(val))
	case Number:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case String:
		return string(val)
	default:
		return fmt.Sprint(ToAny(v))
	}
}
