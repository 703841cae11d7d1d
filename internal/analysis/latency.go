// Package analysis summarizes how long an app spends handling events.
package analysis

import (
	"math"
	"sort"
	"time"
)

// Stats summarizes one kind of event. Percentiles use the nearest-rank
// method.
type Stats struct {
	Kind        string
	Count       int
	Min         time.Duration
	Max         time.Duration
	Mean        time.Duration
	Median      time.Duration
	StdDev      time.Duration
	Percentiles map[int]time.Duration
}

// Timings collects handler durations by event kind. It is not safe for
// concurrent use; the host records from its single event loop.
type Timings struct {
	byKind map[string][]time.Duration
}

func NewTimings() *Timings {
	return &Timings{byKind: make(map[string][]time.Duration)}
}

func (t *Timings) Observe(kind string, d time.Duration) {
	t.byKind[kind] = append(t.byKind[kind], d)
}

// Kinds lists the observed kinds in name order.
func (t *Timings) Kinds() []string {
	kinds := make([]string, 0, len(t.byKind))
	for k := range t.byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Summary returns stats for every observed kind in name order.
func (t *Timings) Summary(percentiles ...int) []Stats {
	out := make([]Stats, 0, len(t.byKind))
	for _, k := range t.Kinds() {
		s := Summarize(t.byKind[k], percentiles...)
		s.Kind = k
		out = append(out, s)
	}
	return out
}

func Summarize(durations []time.Duration, percentiles ...int) Stats {
	var s Stats
	n := len(durations)
	if n == 0 {
		return s
	}

	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	s.Count = n
	s.Min = sorted[0]
	s.Max = sorted[n-1]

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	s.Mean = sum / time.Duration(n)

	if n%2 == 0 {
		s.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		s.Median = sorted[n/2]
	}
	s.StdDev = stdDev(sorted, s.Mean)

	if len(percentiles) > 0 {
		s.Percentiles = make(map[int]time.Duration, len(percentiles))
		for _, p := range percentiles {
			s.Percentiles[p] = rank(sorted, p)
		}
	}
	return s
}

func stdDev(values []time.Duration, mean time.Duration) time.Duration {
	var sumSquares float64
	for _, d := range values {
		delta := float64(d - mean)
		sumSquares += delta * delta
	}
	return time.Duration(math.Sqrt(sumSquares / float64(len(values))))
}

func rank(sorted []time.Duration, p int) time.Duration {
	n := len(sorted)
	switch {
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[n-1]
	}
	idx := int(math.Ceil(float64(p)/100*float64(n))) - 1
	idx = max(idx, 0)
	idx = min(idx, n-1)
	return sorted[idx]
}
