package analytics

import (
	"sort"
	"time"
)

// CountEventsInWindow counts every event inside w; same-day duplicates
// each count.
func CountEventsInWindow(events []time.Time, w Window) int {
	n := 0
	for _, e := range events {
		if w.Contains(e) {
			n++
		}
	}
	return n
}

// DistinctDaysInWindow returns the sorted local dates inside w that have at
// least one event.
func DistinctDaysInWindow(events []time.Time, w Window, loc *time.Location) []Date {
	seen := make(map[Date]struct{})
	for _, e := range events {
		if w.Contains(e) {
			seen[DateOf(e, loc)] = struct{}{}
		}
	}
	return sortedDates(seen)
}

// DailyCounts returns the raw number of events per local date.
func DailyCounts(events []time.Time, loc *time.Location) map[Date]int {
	counts := make(map[Date]int)
	for _, e := range events {
		counts[DateOf(e, loc)]++
	}
	return counts
}

func distinctDays(events []time.Time, loc *time.Location) map[Date]struct{} {
	set := make(map[Date]struct{}, len(events))
	for _, e := range events {
		set[DateOf(e, loc)] = struct{}{}
	}
	return set
}

func sortedDates(set map[Date]struct{}) []Date {
	dates := make([]Date, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}
