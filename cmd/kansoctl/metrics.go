package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

func newMetricsCmd() *cobra.Command {
	var (
		flags engineFlags
		id    string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Per-habit metrics for every habit in a snapshot",
		Long: `Compute streaks, period progress, completion rate and the calendar
for each habit in the snapshot.

Examples:
  # All habits, calendar for February
  kansoctl metrics --file snapshot.json --month 2024-02

  # One habit, as of a fixed instant in Rome
  kansoctl metrics -f snapshot.json --id h-1 --now 2024-03-13T18:00:00Z --tz Europe/Rome`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, now, err := flags.options()
			if err != nil {
				return err
			}

			snapshots, err := flags.snapshots(cmd, opts.Location)
			if err != nil {
				return err
			}

			results := make([]domain.HabitMetrics, 0, len(snapshots))
			for _, s := range snapshots {
				if id != "" && s.ID != id {
					continue
				}
				m, err := analytics.ComputeHabitMetrics(s, now, opts)
				if err != nil {
					return err
				}
				results = append(results, m)
			}

			if id != "" && len(results) == 0 {
				return fmt.Errorf("habit %q not found in snapshot", id)
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.month, "month", "", "calendar month (YYYY-MM), defaults to the month of --now")
	cmd.Flags().StringVar(&id, "id", "", "only report the habit with this id")
	return cmd
}

func newDashboardCmd() *cobra.Command {
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Aggregate metrics over a snapshot",
		Long: `Compute the dashboard: totals, average progress, the best streak and
completions per category over the lookback window.

Examples:
  kansoctl dashboard --file snapshot.json --lookback-days 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.lookbackDays < 1 {
				return fmt.Errorf("--lookback-days must be >= 1")
			}

			opts, now, err := flags.options()
			if err != nil {
				return err
			}

			snapshots, err := flags.snapshots(cmd, opts.Location)
			if err != nil {
				return err
			}

			dashboard, err := analytics.ComputeDashboard(snapshots, now, opts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dashboard)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&flags.lookbackDays, "lookback-days", analytics.DefaultLookbackDays, "category histogram window in days")
	return cmd
}
