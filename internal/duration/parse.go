package duration

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const maxDurationFloat = float64(^uint64(0) >> 1)

var unitTable = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
}

// Parse reads a duration the way scenario and config files write them:
// anything time.ParseDuration accepts, mixed units with spaces ("1m 30s"),
// or a bare number meaning milliseconds, matching cb.setTimeout.
func Parse(value string) (time.Duration, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	if ms, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return fromFloat(ms * float64(time.Millisecond))
	}
	if d, err := time.ParseDuration(trimmed); err == nil {
		return d, true
	}
	return parseSpaced(trimmed)
}

func parseSpaced(s string) (time.Duration, bool) {
	sign := 1.0
	if s[0] == '+' || s[0] == '-' {
		if s[0] == '-' {
			sign = -1.0
		}
		s = s[1:]
	}

	var total float64
	parsed := false
	for {
		s = strings.TrimSpace(s)
		if s == "" {
			break
		}
		numEnd := scanNumber(s)
		if numEnd == 0 {
			return 0, false
		}
		n, err := strconv.ParseFloat(s[:numEnd], 64)
		if err != nil {
			return 0, false
		}
		unitEnd := scanUnit(s[numEnd:])
		if unitEnd == 0 {
			return 0, false
		}
		scale, ok := unitTable[strings.ToLower(s[numEnd:numEnd+unitEnd])]
		if !ok {
			return 0, false
		}
		total += n * float64(scale)
		if math.Abs(total) > maxDurationFloat {
			return 0, false
		}
		parsed = true
		s = s[numEnd+unitEnd:]
	}
	if !parsed {
		return 0, false
	}
	return fromFloat(total * sign)
}

func fromFloat(f float64) (time.Duration, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxDurationFloat {
		return 0, false
	}
	return time.Duration(math.Round(f)), true
}

func scanNumber(s string) int {
	dotSeen := false
	digitSeen := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			digitSeen = true
		case ch == '.' && !dotSeen:
			dotSeen = true
		default:
			if !digitSeen {
				return 0
			}
			return i
		}
	}
	if !digitSeen {
		return 0
	}
	return len(s)
}

// scanUnit returns the length of the contiguous alphabetic unit suffix.
func scanUnit(s string) int {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') {
			return i
		}
	}
	return len(s)
}
