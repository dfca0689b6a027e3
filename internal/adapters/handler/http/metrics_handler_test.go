package http_test

import (
	"net/http"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

func seedGym(t *testing.T, s *testServer) domain.Habit {
	t.Helper()
	h := createHabit(t, s, alice, map[string]any{
		"name":               "Gym",
		"expected_frequency": map[string]any{"count": 3, "period": "week"},
	})
	for _, at := range []string{"2024-03-11T07:00:00Z", "2024-03-12T07:00:00Z", "2024-03-13T07:00:00Z"} {
		complete(t, s, h.ID, alice, at)
	}
	return h
}

func TestMetricsHandler_HabitMetrics(t *testing.T) {
	t.Run("Success: weekly target met", func(t *testing.T) {
		s := newTestServer(t)
		h := seedGym(t, s)

		w := s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/metrics", alice, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		m := decode[domain.HabitMetrics](t, w)
		assert.Equal(t, 3, m.TotalCompletions)
		assert.Equal(t, 3, m.CurrentStreak)
		assert.Equal(t, 100, m.ThisPeriod.Percent)
		assert.Equal(t, "Fitness", m.Category)
		assert.Equal(t, "2024-03", m.CalendarMonth)
	})

	t.Run("Success: month selects calendar", func(t *testing.T) {
		s := newTestServer(t)
		h := seedGym(t, s)

		w := s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/metrics?month=2024-02&tz=Europe/Rome", alice, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		m := decode[domain.HabitMetrics](t, w)
		assert.Equal(t, "2024-02", m.CalendarMonth)
		assert.Len(t, m.Calendar, 29)
	})

	t.Run("Fail: bad month and tz", func(t *testing.T) {
		s := newTestServer(t)
		h := seedGym(t, s)

		w := s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/metrics?month=March", alice, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/metrics?tz=Mars/Olympus", alice, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: foreign habit", func(t *testing.T) {
		s := newTestServer(t)
		h := seedGym(t, s)

		w := s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/metrics", bob, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestMetricsHandler_Dashboard(t *testing.T) {
	t.Run("Success: aggregates own habits", func(t *testing.T) {
		s := newTestServer(t)
		seedGym(t, s)

		w := s.do(t, http.MethodGet, "/api/v1/metrics/dashboard", alice, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		d := decode[domain.DashboardMetrics](t, w)
		assert.Equal(t, 1, d.TotalHabits)
		assert.Equal(t, 3, d.TotalCompletions)
		assert.Equal(t, 3, d.Categories["Fitness"])
	})

	t.Run("Success: archived habits hidden unless requested", func(t *testing.T) {
		s := newTestServer(t)
		h := seedGym(t, s)
		s.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/archive", alice, nil)

		w := s.do(t, http.MethodGet, "/api/v1/metrics/dashboard", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, decode[domain.DashboardMetrics](t, w).TotalHabits)

		w = s.do(t, http.MethodGet, "/api/v1/metrics/dashboard?include_archived=true", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[domain.DashboardMetrics](t, w).TotalHabits)
	})

	t.Run("Fail: invalid query values", func(t *testing.T) {
		s := newTestServer(t)

		for _, q := range []string{"lookback_days=0", "lookback_days=abc", "include_archived=maybe", "tz=Nowhere"} {
			w := s.do(t, http.MethodGet, "/api/v1/metrics/dashboard?"+q, alice, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
		}
	})
}

func TestMetricsHandler_Compute(t *testing.T) {
	t.Run("Success: records with legacy frequency", func(t *testing.T) {
		s := newTestServer(t)

		body := `{
			"now": "2024-03-13T18:00:00Z",
			"habits": [
				{"id": "h-1", "name": "Drink water", "tags": [], "completedDates": ["2024-03-12", "2024-03-13"]},
				{"id": "h-2", "name": "Gym", "tags": [], "completedDates": [], "expectedFrequency": "3 times per week"}
			]
		}`

		w := s.do(t, http.MethodPost, "/api/v1/analytics/compute", alice, body)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		d := decode[domain.DashboardMetrics](t, w)
		require.Len(t, d.Habits, 2)
		assert.Equal(t, "Health", d.Habits[0].Category)
		assert.Equal(t, 2, d.Habits[0].CurrentStreak)
		assert.Equal(t, domain.FrequencyTarget{Count: 3, Period: domain.PeriodWeek}, d.Habits[1].Frequency)
	})

	t.Run("Fail: missing habits and bad now", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(t, http.MethodPost, "/api/v1/analytics/compute", alice, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/analytics/compute", alice, `{"habits": [], "now": "soon"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMetricsHandler_ConfiguredLocation(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	t.Run("Success: month without tz is read in the configured zone", func(t *testing.T) {
		s := newTestServerIn(t, newYork)
		h := createHabit(t, s, alice, map[string]any{"name": "Read"})
		// 22:00 on 29 February in New York.
		complete(t, s, h.ID, alice, "2024-03-01T03:00:00Z")

		w := s.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/metrics?month=2024-03", alice, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		m := decode[domain.HabitMetrics](t, w)
		assert.Equal(t, "2024-03", m.CalendarMonth)
		require.Len(t, m.Calendar, 31)
		assert.Equal(t, "2024-03-01", m.Calendar[0].Date)
		assert.Equal(t, 0, m.Calendar[0].Count)
	})

	t.Run("Success: zone-less now matches zone-less completed dates", func(t *testing.T) {
		s := newTestServerIn(t, newYork)

		body := `{
			"now": "2024-01-04T00:00",
			"habits": [
				{"id": "h-1", "name": "Read", "tags": [], "completedDates": ["2024-01-01", "2024-01-02", "2024-01-03"]}
			]
		}`

		w := s.do(t, http.MethodPost, "/api/v1/analytics/compute", alice, body)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		d := decode[domain.DashboardMetrics](t, w)
		require.Len(t, d.Habits, 1)
		assert.Equal(t, 0, d.Habits[0].CurrentStreak)
		assert.Equal(t, 3, d.Habits[0].LongestStreak)
	})

	t.Run("Success: explicit tz overrides the configured zone", func(t *testing.T) {
		s := newTestServerIn(t, newYork)

		body := `{
			"now": "2024-01-03T23:30",
			"tz": "UTC",
			"habits": [
				{"id": "h-1", "name": "Read", "tags": [], "completedDates": ["2024-01-01", "2024-01-02", "2024-01-03"]}
			]
		}`

		w := s.do(t, http.MethodPost, "/api/v1/analytics/compute", alice, body)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		d := decode[domain.DashboardMetrics](t, w)
		require.Len(t, d.Habits, 1)
		assert.Equal(t, 3, d.Habits[0].CurrentStreak)
	})
}
