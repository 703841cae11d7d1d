package duration

import (
	"fmt"
	"time"
)

// Duration decodes from TOML and YAML strings through Parse.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("invalid duration %q", string(text))
	}
	*d = Duration(parsed)
	return nil
}
