package analytics

import "time"

// CurrentStreak counts consecutive local days with at least one event,
// walking back from today. A day without events ends the walk, so an empty
// today yields 0.
func CurrentStreak(events []time.Time, now time.Time, loc *time.Location) int {
	if len(events) == 0 {
		return 0
	}

	days := distinctDays(events, loc)

	streak := 0
	for d := DateOf(now, loc); ; d = d.AddDays(-1) {
		if _, ok := days[d]; !ok {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of consecutive local days with at
// least one event anywhere in the history.
func LongestStreak(events []time.Time, loc *time.Location) int {
	dates := sortedDates(distinctDays(events, loc))
	if len(dates) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].AddDays(1) == dates[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
