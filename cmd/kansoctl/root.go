package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

const maxSnapshotSize = 16 << 20

type engineFlags struct {
	file         string
	now          string
	month        string
	tz           string
	weekStart    string
	lookbackDays int
	history      int
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kansoctl",
		Short: "Compute habit metrics from exported snapshots",
		Long: `kansoctl runs the analytics engine over a JSON snapshot of habits.

A snapshot is either an array of habit records or an object with a
"habits" array. Each record carries id, name, tags, completedDates and
an optional expectedFrequency.`,
		Version:       version,
		SilenceUsage: true,
	}

	root.AddCommand(newMetricsCmd())
	root.AddCommand(newDashboardCmd())
	root.AddCommand(newTokenCmd())
	return root
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "-", "snapshot file, - for stdin")
	cmd.Flags().StringVar(&f.now, "now", "", "reference time (RFC3339 or YYYY-MM-DD), defaults to the current time")
	cmd.Flags().StringVar(&f.tz, "tz", "UTC", "IANA time zone used for local days")
	cmd.Flags().StringVar(&f.weekStart, "week-start", "monday", "first day of the week")
	cmd.Flags().IntVar(&f.history, "history", analytics.DefaultHistoryPeriods, "periods used for the completion rate")
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// options resolves the flag values into engine options and a reference time.
func (f *engineFlags) options() (analytics.Options, time.Time, error) {
	loc, err := time.LoadLocation(f.tz)
	if err != nil {
		return analytics.Options{}, time.Time{}, fmt.Errorf("invalid --tz: %w", err)
	}

	ws, ok := weekdays[strings.ToLower(f.weekStart)]
	if !ok {
		return analytics.Options{}, time.Time{}, fmt.Errorf("invalid --week-start %q", f.weekStart)
	}

	now := time.Now().In(loc)
	if f.now != "" {
		if now, ok = analytics.ParseTimestamp(f.now, loc); !ok {
			return analytics.Options{}, time.Time{}, fmt.Errorf("invalid --now %q", f.now)
		}
	}

	opts := analytics.Options{
		Location:       loc,
		WeekStartsOn:   &ws,
		HistoryPeriods: f.history,
		LookbackDays:   f.lookbackDays,
	}

	if f.month != "" {
		month, err := time.ParseInLocation("2006-01", f.month, loc)
		if err != nil {
			return analytics.Options{}, time.Time{}, fmt.Errorf("invalid --month %q, use YYYY-MM", f.month)
		}
		opts.CalendarMonth = month
	}

	return opts, now, nil
}

func (f *engineFlags) snapshots(cmd *cobra.Command, loc *time.Location) ([]domain.HabitSnapshot, error) {
	var r io.Reader = cmd.InOrStdin()
	if f.file != "-" {
		file, err := os.Open(f.file)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer file.Close()
		r = file
	}

	records, err := readRecords(io.LimitReader(r, maxSnapshotSize))
	if err != nil {
		return nil, err
	}

	out := make([]domain.HabitSnapshot, 0, len(records))
	for _, rec := range records {
		out = append(out, analytics.SnapshotFromRecord(rec, loc))
	}
	return out, nil
}

// readRecords accepts a bare array or an object wrapping a "habits" array.
func readRecords(r io.Reader) ([]domain.HabitRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("snapshot is empty")
	}

	if strings.HasPrefix(trimmed, "[") {
		var records []domain.HabitRecord
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot: %w", err)
		}
		return records, nil
	}

	var wrapped struct {
		Habits []domain.HabitRecord `json:"habits"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return wrapped.Habits, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
