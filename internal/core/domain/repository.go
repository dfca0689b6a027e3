package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound      = errors.New("habit not found")
	ErrHabitConflict      = errors.New("habit version conflict")
	ErrCompletionNotFound = errors.New("completion not found")
	ErrUnauthorized       = errors.New("unauthorized")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves an active (non-deleted) habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all active habits of a user, archived ones included.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies an existing habit.
	// Implementations must check the version (optimistic locking) and bump it.
	Update(ctx context.Context, habit *Habit) error

	// Delete performs a soft delete.
	Delete(ctx context.Context, id string) error

	// GetChanges [SYNC] Returns only the deltas (changes) occurring after a specific date.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Habit, error)

	// UpdateStreaks stores the denormalized streak values computed by the worker.
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type CompletionRepository interface {
	Create(ctx context.Context, completion *Completion) error

	GetByID(ctx context.Context, id string) (*Completion, error)

	// Delete performs a soft delete.
	// It requires userID to ensure the user actually owns the completion being deleted.
	Delete(ctx context.Context, id string, userID string) error

	// ListByHabitID returns the full active history of a habit, oldest first.
	ListByHabitID(ctx context.Context, habitID string) ([]*Completion, error)

	// ListByHabitIDWithRange returns active completions with from <= completed_at < to.
	ListByHabitIDWithRange(ctx context.Context, habitID string, from, to time.Time) ([]*Completion, error)

	// ListByUserID returns the active history of every habit owned by the user.
	ListByUserID(ctx context.Context, userID string) ([]*Completion, error)

	// GetChanges [SYNC ENGINE] Returns all changes (creations and soft-deletes)
	// that occurred after the 'since' timestamp.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Completion, error)
}
