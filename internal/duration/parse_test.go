package duration

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{name: "zero", input: "0", want: 0},
		{name: "bare milliseconds", input: "1500", want: 1500 * time.Millisecond},
		{name: "fractional milliseconds", input: "0.5", want: 500 * time.Microsecond},
		{name: "seconds", input: "2s", want: 2 * time.Second},
		{name: "mixed", input: "1h30m", want: time.Hour + 30*time.Minute},
		{name: "spaces", input: "1m 30s", want: 90 * time.Second},
		{name: "signed spaced", input: "+1h 5m", want: time.Hour + 5*time.Minute},
		{name: "negative", input: "-250ms", want: -250 * time.Millisecond},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Parse(tc.input)
			if !ok {
				t.Fatalf("expected ok for %q", tc.input)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"   ",
		"d",
		"1x",
		"1d",
		"1.2.3s",
		"1h-30m",
	}

	for _, input := range inputs {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			if _, ok := Parse(input); ok {
				t.Fatalf("expected invalid for %q", input)
			}
		})
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("750")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Std() != 750*time.Millisecond {
		t.Fatalf("expected 750ms, got %v", d.Std())
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
	out, _ := Duration(3 * time.Second).MarshalText()
	if string(out) != "3s" {
		t.Fatalf("unexpected text %q", out)
	}
}
