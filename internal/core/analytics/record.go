package analytics

import (
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 date-time. Zone-less values are taken as
// local time in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SnapshotFromRecord converts the wire form of a habit into engine input.
// Timestamps that cannot be parsed are dropped.
func SnapshotFromRecord(rec domain.HabitRecord, loc *time.Location) domain.HabitSnapshot {
	if loc == nil {
		loc = time.Local
	}

	events := make([]time.Time, 0, len(rec.CompletedDates))
	for _, raw := range rec.CompletedDates {
		if t, ok := ParseTimestamp(raw, loc); ok {
			events = append(events, t)
		}
	}

	var freq any
	if len(rec.ExpectedFrequency) > 0 {
		freq = rec.ExpectedFrequency
	}

	return domain.HabitSnapshot{
		ID:           rec.ID,
		Name:         rec.Name,
		Tags:         rec.Tags,
		CategoryHint: rec.CategoryHint,
		Frequency:    freq,
		Events:       events,
	}
}
