package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type metricsFixture struct {
	habits      *MockRepo
	completions *MockCompletionRepo
	svc         *services.MetricsService
}

func newMetricsFixture(clock func() time.Time) *metricsFixture {
	f := &metricsFixture{
		habits:      NewMockRepo(),
		completions: NewMockCompletionRepo(),
	}
	f.svc = services.NewMetricsService(f.habits, f.completions, analytics.Options{Location: time.UTC}, clock)
	return f
}

func (f *metricsFixture) addHabit(t *testing.T, attrs domain.HabitAttributes, days ...int) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit("user-1", attrs)
	require.NoError(t, err)
	require.NoError(t, f.habits.Create(context.Background(), h))

	for _, d := range days {
		c := domain.NewCompletion(h.ID, "user-1", time.Date(2024, 3, d, 7, 0, 0, 0, time.UTC))
		require.NoError(t, f.completions.Create(context.Background(), c))
	}
	return h
}

func TestMetricsService_GetHabitMetrics(t *testing.T) {
	f := newMetricsFixture(fixedClock)
	run := f.addHabit(t, domain.HabitAttributes{
		Name:              "Morning run",
		ExpectedFrequency: json.RawMessage(`{"count":3,"period":"week"}`),
	}, 11, 12, 13)

	t.Run("Success: Weekly target fully met", func(t *testing.T) {
		m, err := f.svc.GetHabitMetrics(context.Background(), services.MetricsQuery{UserID: "user-1", HabitID: run.ID})

		require.NoError(t, err)
		assert.Equal(t, 3, m.TotalCompletions)
		assert.Equal(t, 3, m.CurrentStreak)
		assert.Equal(t, 3, m.LongestStreak)
		assert.Equal(t, domain.PeriodWeek, m.ThisPeriod.Period)
		assert.Equal(t, 3, m.ThisPeriod.Current)
		assert.Equal(t, 100, m.ThisPeriod.Percent)
		assert.Equal(t, "Fitness", m.Category)
		assert.Equal(t, "2024-03", m.CalendarMonth)
		assert.Len(t, m.Calendar, 31)
	})

	t.Run("Success: Calendar month override", func(t *testing.T) {
		m, err := f.svc.GetHabitMetrics(context.Background(), services.MetricsQuery{
			UserID:        "user-1",
			HabitID:       run.ID,
			CalendarMonth: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		})

		require.NoError(t, err)
		assert.Equal(t, "2024-02", m.CalendarMonth)
		assert.Len(t, m.Calendar, 29)
	})

	t.Run("Fail: Security - Foreign habit", func(t *testing.T) {
		_, err := f.svc.GetHabitMetrics(context.Background(), services.MetricsQuery{UserID: "user-2", HabitID: run.ID})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Fail: Zero reference time", func(t *testing.T) {
		broken := newMetricsFixture(func() time.Time { return time.Time{} })
		h := broken.addHabit(t, domain.HabitAttributes{Name: "Run"})

		_, err := broken.svc.GetHabitMetrics(context.Background(), services.MetricsQuery{UserID: "user-1", HabitID: h.ID})
		assert.ErrorIs(t, err, analytics.ErrInvalidReferenceTime)
	})
}

func TestMetricsService_GetDashboard(t *testing.T) {
	f := newMetricsFixture(fixedClock)
	f.addHabit(t, domain.HabitAttributes{
		Name:              "Morning run",
		ExpectedFrequency: json.RawMessage(`{"count":3,"period":"week"}`),
	}, 11, 12, 13)
	f.addHabit(t, domain.HabitAttributes{Name: "Read", Tags: []string{"Study"}}, 13)
	paused := f.addHabit(t, domain.HabitAttributes{Name: "Swim"}, 1)
	archivedAt := fixedNow
	f.habits.store[paused.ID].ArchivedAt = &archivedAt

	t.Run("Success: Archived habits are skipped by default", func(t *testing.T) {
		d, err := f.svc.GetDashboard(context.Background(), services.MetricsQuery{UserID: "user-1"})

		require.NoError(t, err)
		assert.Equal(t, 2, d.TotalHabits)
		assert.Equal(t, 4, d.TotalCompletions)
		assert.Equal(t, 100.0, d.AveragePercent)
		assert.Equal(t, 3, d.LongestStreak)
		assert.Equal(t, 7, d.LookbackDays)
		assert.Equal(t, map[string]int{"Fitness": 3, "Study": 1}, d.Categories)
	})

	t.Run("Success: IncludeArchived widens the set", func(t *testing.T) {
		d, err := f.svc.GetDashboard(context.Background(), services.MetricsQuery{UserID: "user-1", IncludeArchived: true})

		require.NoError(t, err)
		assert.Equal(t, 3, d.TotalHabits)
		assert.Equal(t, 5, d.TotalCompletions)
		assert.Equal(t, 3, d.Categories["Fitness"])
	})

	t.Run("Success: Lookback override", func(t *testing.T) {
		d, err := f.svc.GetDashboard(context.Background(), services.MetricsQuery{UserID: "user-1", LookbackDays: 1})

		require.NoError(t, err)
		assert.Equal(t, 1, d.LookbackDays)
		assert.Equal(t, map[string]int{"Fitness": 1, "Study": 1}, d.Categories)
	})

	t.Run("Edge Case: User without habits", func(t *testing.T) {
		d, err := f.svc.GetDashboard(context.Background(), services.MetricsQuery{UserID: "nobody"})

		require.NoError(t, err)
		assert.Equal(t, 0, d.TotalHabits)
		assert.Equal(t, 0.0, d.AveragePercent)
		assert.Empty(t, d.Habits)
	})
}

func TestMetricsService_ComputeFromRecords(t *testing.T) {
	f := newMetricsFixture(fixedClock)

	records := []domain.HabitRecord{
		{
			ID:             "h-1",
			Name:           "Drink water",
			CompletedDates: []string{"2024-03-12", "2024-03-13T06:30:00Z", "not-a-date"},
		},
		{
			ID:                "h-2",
			Name:              "Gym",
			CompletedDates:    []string{"2024-03-04"},
			ExpectedFrequency: json.RawMessage(`"3 times per week"`),
		},
	}

	d, err := f.svc.ComputeFromRecords(records, services.MetricsQuery{})

	require.NoError(t, err)
	require.Len(t, d.Habits, 2)

	water := d.Habits[0]
	assert.Equal(t, "Health", water.Category)
	assert.Equal(t, 2, water.TotalCompletions)
	assert.Equal(t, 2, water.CurrentStreak)

	gym := d.Habits[1]
	assert.Equal(t, domain.FrequencyTarget{Count: 3, Period: domain.PeriodWeek}, gym.Frequency)
	assert.Equal(t, 0, gym.ThisPeriod.Current)
	assert.Equal(t, 0, gym.CurrentStreak)
}
