package domain_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: Creates valid habit with defaults AND Sync fields", func(t *testing.T) {
		h, err := domain.NewHabit("u1", domain.HabitAttributes{Name: "  Drink Water  "})

		require.NoError(t, err)
		assert.NotEmpty(t, h.ID)
		assert.Equal(t, "Drink Water", h.Name)
		assert.Equal(t, "u1", h.UserID)
		assert.Equal(t, domain.DefaultIcon, h.Icon)
		assert.Equal(t, []string{}, h.Tags)
		assert.Nil(t, h.ExpectedFrequency)

		assert.Equal(t, 0, h.CurrentStreak)
		assert.Equal(t, 0, h.LongestStreak)

		assert.Equal(t, 1, h.Version, "New habits MUST start at Version 1 for Optimistic Locking")
		assert.Nil(t, h.DeletedAt)
		assert.False(t, h.IsArchived())

		assert.WithinDuration(t, time.Now().UTC(), h.CreatedAt, 2*time.Second)
	})

	t.Run("Error: Empty Name", func(t *testing.T) {
		_, err := domain.NewHabit("u1", domain.HabitAttributes{Name: "   "})
		assert.ErrorIs(t, err, domain.ErrHabitNameEmpty)
	})

	t.Run("Error: Invalid UserID", func(t *testing.T) {
		_, err := domain.NewHabit(" ", domain.HabitAttributes{Name: "Read"})
		assert.ErrorIs(t, err, domain.ErrHabitInvalidUserID)
	})
}

func TestHabit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		attrs   domain.HabitAttributes
		wantErr error
	}{
		{"Valid: full attributes", domain.HabitAttributes{Name: "Run", Description: "5k", Color: "#FF00aa", Tags: []string{"fitness"}}, nil},
		{"Valid: short hex color", domain.HabitAttributes{Name: "Run", Color: "#fff"}, nil},
		{"Invalid: name too long", domain.HabitAttributes{Name: strings.Repeat("a", domain.MaxNameLen+1)}, domain.ErrHabitNameTooLong},
		{"Invalid: description too long", domain.HabitAttributes{Name: "Run", Description: strings.Repeat("d", domain.MaxDescLen+1)}, domain.ErrHabitDescTooLong},
		{"Invalid: color name", domain.HabitAttributes{Name: "Run", Color: "red"}, domain.ErrInvalidColor},
		{"Invalid: blank tag", domain.HabitAttributes{Name: "Run", Tags: []string{"ok", " "}}, domain.ErrInvalidTag},
		{"Invalid: tag too long", domain.HabitAttributes{Name: "Run", Tags: []string{strings.Repeat("t", domain.MaxTagLen+1)}}, domain.ErrInvalidTag},
		{"Invalid: frequency number", domain.HabitAttributes{Name: "Run", ExpectedFrequency: json.RawMessage(`3`)}, domain.ErrInvalidFrequency},
		{"Invalid: frequency garbage", domain.HabitAttributes{Name: "Run", ExpectedFrequency: json.RawMessage(`{count:`)}, domain.ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewHabit("u1", tt.attrs)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHabit_Tags(t *testing.T) {
	t.Run("Success: trims and dedupes case-insensitively", func(t *testing.T) {
		h, err := domain.NewHabit("u1", domain.HabitAttributes{Name: "Run", Tags: []string{" Fitness", "fitness", "Outdoor "}})

		require.NoError(t, err)
		assert.Equal(t, []string{"Fitness", "Outdoor"}, h.Tags)
	})

	t.Run("Error: too many distinct tags", func(t *testing.T) {
		tags := make([]string, 0, domain.MaxTags+1)
		for i := 0; i <= domain.MaxTags; i++ {
			tags = append(tags, strings.Repeat("x", i+1))
		}

		_, err := domain.NewHabit("u1", domain.HabitAttributes{Name: "Run", Tags: tags})
		assert.ErrorIs(t, err, domain.ErrTooManyTags)
	})

	t.Run("Edge Case: duplicates do not count toward the limit", func(t *testing.T) {
		tags := make([]string, 0, 20)
		for i := 0; i < 20; i++ {
			tags = append(tags, "same")
		}

		h, err := domain.NewHabit("u1", domain.HabitAttributes{Name: "Run", Tags: tags})
		require.NoError(t, err)
		assert.Equal(t, []string{"same"}, h.Tags)
	})
}

func TestHabit_Frequency(t *testing.T) {
	t.Run("Success: object and legacy string are kept verbatim", func(t *testing.T) {
		obj, err := domain.NewHabit("u1", domain.HabitAttributes{Name: "Gym", ExpectedFrequency: json.RawMessage(` {"count":3,"period":"week"} `)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"count":3,"period":"week"}`, string(obj.ExpectedFrequency))

		legacy, err := domain.NewHabit("u1", domain.HabitAttributes{Name: "Gym", ExpectedFrequency: json.RawMessage(`"3 times per week"`)})
		require.NoError(t, err)
		assert.Equal(t, `"3 times per week"`, string(legacy.ExpectedFrequency))
	})

	t.Run("Edge Case: null clears the frequency", func(t *testing.T) {
		h, err := domain.NewHabit("u1", domain.HabitAttributes{Name: "Gym", ExpectedFrequency: json.RawMessage(`null`)})
		require.NoError(t, err)
		assert.Nil(t, h.ExpectedFrequency)
	})
}

func TestHabit_Lifecycle(t *testing.T) {
	t.Run("Success: update replaces attributes", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", domain.HabitAttributes{Name: "Read"})
		before := h.UpdatedAt

		err := h.Update(domain.HabitAttributes{Name: "Read 20 pages", Icon: "book", CategoryHint: " Learning "})

		require.NoError(t, err)
		assert.Equal(t, "Read 20 pages", h.Name)
		assert.Equal(t, "book", h.Icon)
		assert.Equal(t, "Learning", h.CategoryHint)
		assert.False(t, h.UpdatedAt.Before(before))
		assert.Equal(t, 1, h.Version, "version is owned by the repository")
	})

	t.Run("Error: archived habits are read-only", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", domain.HabitAttributes{Name: "Read"})
		h.Archive()

		assert.True(t, h.IsArchived())
		assert.ErrorIs(t, h.Update(domain.HabitAttributes{Name: "Other"}), domain.ErrHabitArchived)
		assert.ErrorIs(t, h.ChangePosition(3), domain.ErrHabitArchived)
	})

	t.Run("Edge Case: archive and restore are idempotent", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", domain.HabitAttributes{Name: "Read"})

		h.Archive()
		first := *h.ArchivedAt
		h.Archive()
		assert.Equal(t, first, *h.ArchivedAt)

		h.Restore()
		h.Restore()
		assert.Nil(t, h.ArchivedAt)
		require.NoError(t, h.ChangePosition(4))
		assert.Equal(t, 4, h.SortOrder)
	})

	t.Run("Success: update streak", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", domain.HabitAttributes{Name: "Read"})

		h.UpdateStreak(3, 10)

		assert.Equal(t, 3, h.CurrentStreak)
		assert.Equal(t, 10, h.LongestStreak)
	})
}

func TestHabit_Snapshot(t *testing.T) {
	h, _ := domain.NewHabit("u1", domain.HabitAttributes{
		Name:              "Gym",
		Tags:              []string{"Fitness"},
		CategoryHint:      "Health",
		ExpectedFrequency: json.RawMessage(`{"count":3,"period":"week"}`),
	})
	events := []time.Time{time.Date(2024, 3, 11, 7, 0, 0, 0, time.UTC)}

	s := h.Snapshot(events)

	assert.Equal(t, h.ID, s.ID)
	assert.Equal(t, "Gym", s.Name)
	assert.Equal(t, "Health", s.CategoryHint)
	assert.Equal(t, h.ExpectedFrequency, s.Frequency)
	assert.Equal(t, events, s.Events)

	s.Tags[0] = "changed"
	s.Events[0] = time.Time{}
	assert.Equal(t, "Fitness", h.Tags[0], "snapshot must not alias habit tags")
	assert.False(t, events[0].IsZero(), "snapshot must not alias the caller's events")

	t.Run("Edge Case: no frequency yields nil", func(t *testing.T) {
		plain, _ := domain.NewHabit("u1", domain.HabitAttributes{Name: "Read"})
		assert.Nil(t, plain.Snapshot(nil).Frequency)
	})
}
