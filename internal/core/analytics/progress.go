package analytics

import (
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

const (
	LevelNone = iota
	LevelLow
	LevelMedium
	LevelHigh
)

// Percent returns round(current/target*100) capped to [0, 100]. A
// non-positive target yields 0.
func Percent(current, target int) int {
	if target <= 0 || current <= 0 {
		return 0
	}
	p := int(math.Round(float64(current) / float64(target) * 100))
	if p > 100 {
		return 100
	}
	return p
}

// ProgressInWindow counts raw events in w against the target count.
func ProgressInWindow(events []time.Time, target domain.FrequencyTarget, w Window) domain.PeriodProgress {
	current := CountEventsInWindow(events, w)
	return domain.PeriodProgress{
		Period:  target.Period,
		Start:   w.Start,
		End:     w.End,
		Current: current,
		Target:  target.Count,
		Percent: Percent(current, target.Count),
	}
}

// ThisPeriodProgress reports progress for the period now falls into.
func ThisPeriodProgress(events []time.Time, target domain.FrequencyTarget, now time.Time, weekStart time.Weekday) domain.PeriodProgress {
	return ProgressInWindow(events, target, WindowContaining(now, target.Period, weekStart))
}

// PeriodHistory returns progress for the n most recent periods, oldest first,
// the last entry being the period now falls into.
func PeriodHistory(events []time.Time, target domain.FrequencyTarget, now time.Time, weekStart time.Weekday, n int) []domain.PeriodProgress {
	if n <= 0 {
		return []domain.PeriodProgress{}
	}

	current := WindowContaining(now, target.Period, weekStart)
	history := make([]domain.PeriodProgress, 0, n)
	for i := n - 1; i >= 0; i-- {
		w := OffsetBy(current, target.Period, -i)
		history = append(history, ProgressInWindow(events, target, w))
	}
	return history
}

// CompletionRate is the percentage of periods whose target was reached.
func CompletionRate(history []domain.PeriodProgress) float64 {
	if len(history) == 0 {
		return 0
	}

	met := 0
	for _, p := range history {
		if p.Target > 0 && p.Current >= p.Target {
			met++
		}
	}
	rate := float64(met) / float64(len(history)) * 100
	return math.Round(rate*100) / 100
}

// HeatLevel buckets a day's raw count for calendar rendering.
func HeatLevel(count int) int {
	switch {
	case count <= 0:
		return LevelNone
	case count == 1:
		return LevelLow
	case count == 2:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// CalendarMonth returns one entry per day of the month containing month,
// with the raw event count of that local day.
func CalendarMonth(events []time.Time, month time.Time, loc *time.Location) []domain.CalendarDay {
	w := WindowContaining(month.In(loc), domain.PeriodMonth, time.Monday)

	counts := make(map[Date]int)
	for _, e := range events {
		if w.Contains(e) {
			counts[DateOf(e, loc)]++
		}
	}

	first := DateOf(w.Start, loc)
	days := make([]domain.CalendarDay, 0, 31)
	for d := first; d.Month == first.Month && d.Year == first.Year; d = d.AddDays(1) {
		c := counts[d]
		days = append(days, domain.CalendarDay{
			Date:  d.String(),
			Count: c,
			Level: HeatLevel(c),
		})
	}
	return days
}
