package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCompletion = errors.New("invalid completion data")
)

// Completion is a single timestamped "rep" of a habit. Several completions
// may share a calendar day; each one counts separately toward progress.
type Completion struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	CompletedAt time.Time `json:"completed_at" db:"completed_at"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewCompletion(habitID, userID string, at time.Time) *Completion {
	now := time.Now().UTC()

	return &Completion{
		ID:          uuid.NewString(),
		HabitID:     habitID,
		UserID:      userID,
		CompletedAt: at.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *Completion) Validate() error {
	if strings.TrimSpace(c.HabitID) == "" {
		return fmt.Errorf("%w: habit_id is required", ErrInvalidCompletion)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidCompletion)
	}
	if c.CompletedAt.IsZero() {
		return fmt.Errorf("%w: completed_at is required", ErrInvalidCompletion)
	}
	return nil
}

// CompletionInstants extracts the timestamps of the active completions.
func CompletionInstants(completions []*Completion) []time.Time {
	out := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		if c == nil || c.DeletedAt != nil {
			continue
		}
		out = append(out, c.CompletedAt)
	}
	return out
}
