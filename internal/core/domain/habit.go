package domain

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrTooManyTags        = errors.New("too many tags (max 10)")
	ErrInvalidTag         = errors.New("invalid tag (must be 1-30 chars)")
	ErrInvalidFrequency   = errors.New("expected frequency must be a JSON object or string")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultIcon = "default_icon"
	MaxNameLen  = 100
	MaxDescLen  = 500
	MaxTags     = 10
	MaxTagLen   = 30
)

type Habit struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Color             string          `json:"color"`
	Icon              string          `json:"icon"`
	Tags              []string        `json:"tags"`
	CategoryHint      string          `json:"category_hint,omitempty"`
	ExpectedFrequency json.RawMessage `json:"expected_frequency,omitempty"`
	SortOrder         int             `json:"sort_order"`
	CurrentStreak     int             `json:"current_streak"`
	LongestStreak     int             `json:"longest_streak"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	ArchivedAt        *time.Time      `json:"archived_at,omitempty"`
	DeletedAt         *time.Time      `json:"deleted_at,omitempty"`
}

// HabitAttributes groups the user-editable fields of a habit.
type HabitAttributes struct {
	Name              string
	Description       string
	Color             string
	Icon              string
	Tags              []string
	CategoryHint      string
	ExpectedFrequency json.RawMessage
}

func normalizeTags(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return []string{}, nil
	}

	seen := make(map[string]bool)
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		clean := strings.TrimSpace(t)
		if clean == "" || len(clean) > MaxTagLen {
			return nil, ErrInvalidTag
		}
		key := strings.ToLower(clean)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, clean)
	}

	if len(out) > MaxTags {
		return nil, ErrTooManyTags
	}
	return out, nil
}

func validateFrequency(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, ErrInvalidFrequency
	}
	switch trimmed[0] {
	case '{', '"':
		return json.RawMessage(trimmed), nil
	default:
		return nil, ErrInvalidFrequency
	}
}

func validateAndNormalize(attrs HabitAttributes) (HabitAttributes, error) {
	name := strings.TrimSpace(attrs.Name)
	if name == "" {
		return attrs, ErrHabitNameEmpty
	}
	if len(name) > MaxNameLen {
		return attrs, ErrHabitNameTooLong
	}

	desc := strings.TrimSpace(attrs.Description)
	if len(desc) > MaxDescLen {
		return attrs, ErrHabitDescTooLong
	}

	if attrs.Color != "" && !colorRegex.MatchString(attrs.Color) {
		return attrs, ErrInvalidColor
	}

	tags, err := normalizeTags(attrs.Tags)
	if err != nil {
		return attrs, err
	}

	freq, err := validateFrequency(attrs.ExpectedFrequency)
	if err != nil {
		return attrs, err
	}

	icon := attrs.Icon
	if icon == "" {
		icon = DefaultIcon
	}

	return HabitAttributes{
		Name:              name,
		Description:       desc,
		Color:             attrs.Color,
		Icon:              icon,
		Tags:              tags,
		CategoryHint:      strings.TrimSpace(attrs.CategoryHint),
		ExpectedFrequency: freq,
	}, nil
}

func NewHabit(userID string, attrs HabitAttributes) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	clean, err := validateAndNormalize(attrs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:                uuid.New().String(),
		UserID:            userID,
		Name:              clean.Name,
		Description:       clean.Description,
		Color:             clean.Color,
		Icon:              clean.Icon,
		Tags:              clean.Tags,
		CategoryHint:      clean.CategoryHint,
		ExpectedFrequency: clean.ExpectedFrequency,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (h *Habit) Update(attrs HabitAttributes) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	clean, err := validateAndNormalize(attrs)
	if err != nil {
		return err
	}

	h.Name = clean.Name
	h.Description = clean.Description
	h.Color = clean.Color
	h.Icon = clean.Icon
	h.Tags = clean.Tags
	h.CategoryHint = clean.CategoryHint
	h.ExpectedFrequency = clean.ExpectedFrequency
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) ChangePosition(newOrder int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	h.SortOrder = newOrder
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) IsArchived() bool {
	return h.ArchivedAt != nil
}

func (h *Habit) UpdateStreak(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
}

// Snapshot freezes the habit and the given completion instants into the
// read-only input of the analytics engine.
func (h *Habit) Snapshot(events []time.Time) HabitSnapshot {
	tags := make([]string, len(h.Tags))
	copy(tags, h.Tags)

	evs := make([]time.Time, len(events))
	copy(evs, events)

	var freq any
	if len(h.ExpectedFrequency) > 0 {
		freq = h.ExpectedFrequency
	}

	return HabitSnapshot{
		ID:           h.ID,
		Name:         h.Name,
		Tags:         tags,
		CategoryHint: h.CategoryHint,
		Frequency:    freq,
		Events:       evs,
	}
}
