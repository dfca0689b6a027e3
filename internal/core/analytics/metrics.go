// Package analytics derives streaks, progress, categories, and calendar data
// from a habit's completion history. Every function is pure: callers pass the
// snapshot and the reference instant, nothing reads a clock or does I/O.
package analytics

import (
	"errors"
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

var ErrInvalidReferenceTime = errors.New("analytics: reference time must be a valid instant")

const (
	DefaultHistoryPeriods = 4
	DefaultLookbackDays   = 7
)

type Options struct {
	// Location defines local days. Defaults to the location of now.
	Location *time.Location
	// WeekStartsOn defaults to Monday.
	WeekStartsOn *time.Weekday
	// CalendarMonth selects the month for calendar data; any instant inside
	// it works. Defaults to the month of now.
	CalendarMonth time.Time
	// HistoryPeriods is the number of periods used for the completion rate.
	HistoryPeriods int
	// LookbackDays is the dashboard window for the category histogram.
	LookbackDays int
}

type resolvedOptions struct {
	loc            *time.Location
	weekStart      time.Weekday
	calendarMonth  time.Time
	historyPeriods int
	lookbackDays   int
}

func (o Options) resolve(now time.Time) resolvedOptions {
	r := resolvedOptions{
		loc:            o.Location,
		weekStart:      time.Monday,
		calendarMonth:  o.CalendarMonth,
		historyPeriods: o.HistoryPeriods,
		lookbackDays:   o.LookbackDays,
	}
	if r.loc == nil {
		r.loc = now.Location()
	}
	if o.WeekStartsOn != nil && *o.WeekStartsOn >= time.Sunday && *o.WeekStartsOn <= time.Saturday {
		r.weekStart = *o.WeekStartsOn
	}
	if r.calendarMonth.IsZero() {
		r.calendarMonth = now
	}
	if r.historyPeriods <= 0 {
		r.historyPeriods = DefaultHistoryPeriods
	}
	if r.lookbackDays <= 0 {
		r.lookbackDays = DefaultLookbackDays
	}
	return r
}

// ComputeHabitMetrics is the single entry point for per-habit analytics.
// Malformed habit data degrades to defaults; only a zero reference time is
// rejected.
func ComputeHabitMetrics(h domain.HabitSnapshot, now time.Time, opts Options) (domain.HabitMetrics, error) {
	if now.IsZero() {
		return domain.HabitMetrics{}, ErrInvalidReferenceTime
	}
	o := opts.resolve(now)
	return computeHabit(h, validEvents(h.Events), now.In(o.loc), o), nil
}

// ComputeDashboard runs the facade for every habit and reduces the results.
func ComputeDashboard(habits []domain.HabitSnapshot, now time.Time, opts Options) (domain.DashboardMetrics, error) {
	if now.IsZero() {
		return domain.DashboardMetrics{}, ErrInvalidReferenceTime
	}
	o := opts.resolve(now)
	local := now.In(o.loc)

	today := midnight(local)
	lookback := Window{
		Start: today.AddDate(0, 0, -(o.lookbackDays - 1)),
		End:   today.AddDate(0, 0, 1),
	}

	dash := domain.DashboardMetrics{
		TotalHabits:  len(habits),
		LookbackDays: o.lookbackDays,
		Categories:   make(map[string]int),
		Habits:       make([]domain.HabitMetrics, 0, len(habits)),
	}

	percentSum := 0
	for _, h := range habits {
		events := validEvents(h.Events)
		m := computeHabit(h, events, local, o)

		dash.TotalCompletions += m.TotalCompletions
		percentSum += m.ThisPeriod.Percent
		if m.LongestStreak > dash.LongestStreak {
			dash.LongestStreak = m.LongestStreak
		}
		dash.Categories[m.Category] += CountEventsInWindow(events, lookback)
		dash.Habits = append(dash.Habits, m)
	}

	if len(habits) > 0 {
		avg := float64(percentSum) / float64(len(habits))
		dash.AveragePercent = math.Round(avg*100) / 100
	}

	return dash, nil
}

func computeHabit(h domain.HabitSnapshot, events []time.Time, now time.Time, o resolvedOptions) domain.HabitMetrics {
	target := Normalize(h.Frequency)
	history := PeriodHistory(events, target, now, o.weekStart, o.historyPeriods)
	month := o.calendarMonth.In(o.loc)

	return domain.HabitMetrics{
		HabitID:          h.ID,
		Name:             h.Name,
		TotalCompletions: len(events),
		CurrentStreak:    CurrentStreak(events, now, o.loc),
		LongestStreak:    LongestStreak(events, o.loc),
		Frequency:        target,
		ThisPeriod:       history[len(history)-1],
		History:          history,
		CompletionRate:   CompletionRate(history),
		Category:         Classify(h.Name, h.Tags, h.CategoryHint),
		CalendarMonth:    month.Format("2006-01"),
		Calendar:         CalendarMonth(events, month, o.loc),
	}
}

func validEvents(events []time.Time) []time.Time {
	out := make([]time.Time, 0, len(events))
	for _, e := range events {
		if !e.IsZero() {
			out = append(out, e)
		}
	}
	return out
}
