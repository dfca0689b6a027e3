package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// Window is a half-open time range [Start, End) in local calendar terms.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WindowContaining returns the period window that t falls into, computed in
// t's location. Unknown periods are treated as days.
func WindowContaining(t time.Time, p domain.Period, weekStart time.Weekday) Window {
	day := midnight(t)

	var start time.Time
	switch p {
	case domain.PeriodWeek:
		offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
		start = day.AddDate(0, 0, -offset)
	case domain.PeriodMonth:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	case domain.PeriodYear:
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
	default:
		p = domain.PeriodDay
		start = day
	}

	return Window{Start: start, End: advance(start, p, 1)}
}

// OffsetBy returns the window n periods after w (n < 0 walks backwards).
// w is expected to be aligned on a period boundary, as produced by
// WindowContaining.
func OffsetBy(w Window, p domain.Period, n int) Window {
	if !p.Valid() {
		p = domain.PeriodDay
	}
	start := advance(w.Start, p, n)
	return Window{Start: start, End: advance(start, p, 1)}
}

func advance(t time.Time, p domain.Period, n int) time.Time {
	switch p {
	case domain.PeriodWeek:
		return t.AddDate(0, 0, 7*n)
	case domain.PeriodMonth:
		return t.AddDate(0, n, 0)
	case domain.PeriodYear:
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}
