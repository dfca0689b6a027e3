package domain

import (
	"encoding/json"
	"time"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// FrequencyTarget is the canonical form of a habit's declared target.
// Count is always >= 1. CycleDays is only set for the legacy "every N days"
// form and does not change progress math.
type FrequencyTarget struct {
	Count     int    `json:"count"`
	Period    Period `json:"period"`
	CycleDays int    `json:"cycle_days,omitempty"`
}

// HabitSnapshot is the read-only input of the analytics engine.
// Frequency holds whatever the habit record stored: a FrequencyTarget,
// a JSON object, a legacy string, or nil.
type HabitSnapshot struct {
	ID           string
	Name         string
	Tags         []string
	CategoryHint string
	Frequency    any
	Events       []time.Time
}

// HabitRecord is the wire form of a habit handed over by the persistence layer.
type HabitRecord struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Tags              []string        `json:"tags"`
	CompletedDates    []string        `json:"completedDates"`
	ExpectedFrequency json.RawMessage `json:"expectedFrequency,omitempty"`
	CategoryHint      string          `json:"categoryHint,omitempty"`
}

type PeriodProgress struct {
	Period  Period    `json:"period"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Current int       `json:"current"`
	Target  int       `json:"target"`
	Percent int       `json:"percent"`
}

type CalendarDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type HabitMetrics struct {
	HabitID          string           `json:"habit_id"`
	Name             string           `json:"name"`
	TotalCompletions int              `json:"total_completions"`
	CurrentStreak    int              `json:"current_streak"`
	LongestStreak    int              `json:"longest_streak"`
	Frequency        FrequencyTarget  `json:"frequency"`
	ThisPeriod       PeriodProgress   `json:"this_period"`
	History          []PeriodProgress `json:"history"`
	CompletionRate   float64          `json:"completion_rate"`
	Category         string           `json:"category"`
	CalendarMonth    string           `json:"calendar_month"`
	Calendar         []CalendarDay    `json:"calendar"`
}

type DashboardMetrics struct {
	TotalHabits      int            `json:"total_habits"`
	TotalCompletions int            `json:"total_completions"`
	AveragePercent   float64        `json:"average_percent"`
	LongestStreak    int            `json:"longest_streak"`
	LookbackDays     int            `json:"lookback_days"`
	Categories       map[string]int `json:"categories"`
	Habits           []HabitMetrics `json:"habits"`
}
