package stats

import (
	"fmt"
	"time"
)

type WindowKind int

const (
	// DurationWindow covers (end - length, end]
	DurationWindow WindowKind = iota
	// CountWindow covers the N most recent matches at or before a cutoff
	CountWindow
)

const week = 7 * 24 * time.Hour

// WindowSpec describes a trailing slice of history
type WindowSpec struct {
	Kind   WindowKind
	Length time.Duration
	N      int
}

// Weeks is a duration window of n weeks
func Weeks(n int) WindowSpec {
	return WindowSpec{Kind: DurationWindow, Length: time.Duration(n) * week}
}

// Days is a duration window of n days
func Days(n int) WindowSpec {
	return WindowSpec{Kind: DurationWindow, Length: time.Duration(n) * 24 * time.Hour}
}

// Samples is a count window of the n most recent matches
func Samples(n int) WindowSpec {
	return WindowSpec{Kind: CountWindow, N: n}
}

// Start is the exclusive lower bound of a duration window ending at end
func (w WindowSpec) Start(end time.Time) time.Time {
	return end.Add(-w.Length)
}

func (w WindowSpec) String() string {
	if w.Kind == CountWindow {
		return fmt.Sprintf("%d samples", w.N)
	}
	if w.Length%week == 0 {
		return fmt.Sprintf("%d weeks", w.Length/week)
	}
	return fmt.Sprintf("%d days", w.Length/(24*time.Hour))
}

// Size is the window length in its own unit: samples, whole weeks or days
func (w WindowSpec) Size() int {
	switch {
	case w.Kind == CountWindow:
		return w.N
	case w.Length%week == 0:
		return int(w.Length / week)
	default:
		return int(w.Length / (24 * time.Hour))
	}
}
