package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

// StreakRefresher schedules a recomputation of the denormalized streaks.
type StreakRefresher interface {
	Enqueue(habitID string)
}

type CompletionService struct {
	repo      domain.CompletionRepository
	habitRepo domain.HabitRepository
	worker    StreakRefresher
	loc       *time.Location
	now       func() time.Time
}

func NewCompletionService(repo domain.CompletionRepository, habitRepo domain.HabitRepository, worker StreakRefresher, loc *time.Location, clock func() time.Time) *CompletionService {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = time.Now
	}
	return &CompletionService{
		repo:      repo,
		habitRepo: habitRepo,
		worker:    worker,
		loc:       loc,
		now:       clock,
	}
}

type CompleteInput struct {
	HabitID     string
	UserID      string
	CompletedAt time.Time
}

func (s *CompletionService) Complete(ctx context.Context, input CompleteInput) (*domain.Completion, error) {
	at := input.CompletedAt
	if at.IsZero() {
		at = s.now()
	}

	completion := domain.NewCompletion(input.HabitID, input.UserID, at)
	if err := completion.Validate(); err != nil {
		return nil, err
	}

	habit, err := s.ownedHabit(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}
	if habit.IsArchived() {
		return nil, domain.ErrHabitArchived
	}

	if err := s.repo.Create(ctx, completion); err != nil {
		return nil, err
	}

	s.refresh(habit.ID)

	return completion, nil
}

// Undo removes the most recent completion logged on the local day of `day`.
func (s *CompletionService) Undo(ctx context.Context, habitID, userID string, day time.Time) (*domain.Completion, error) {
	if day.IsZero() {
		day = s.now()
	}

	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return nil, err
	}

	w := analytics.WindowContaining(day.In(s.loc), domain.PeriodDay, time.Monday)
	list, err := s.repo.ListByHabitIDWithRange(ctx, habitID, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	var latest *domain.Completion
	for _, c := range list {
		if latest == nil || c.CompletedAt.After(latest.CompletedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, domain.ErrCompletionNotFound
	}

	if err := s.repo.Delete(ctx, latest.ID, userID); err != nil {
		return nil, err
	}

	s.refresh(habitID)

	return latest, nil
}

func (s *CompletionService) GetByID(ctx context.Context, id string, userID string) (*domain.Completion, error) {
	completion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if completion.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return completion, nil
}

// ListByHabitID returns completions with from <= completed_at < to. A zero
// `to` leaves the range open.
func (s *CompletionService) ListByHabitID(ctx context.Context, habitID string, userID string, from, to time.Time) ([]*domain.Completion, error) {
	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return nil, err
	}

	if !to.IsZero() {
		return s.repo.ListByHabitIDWithRange(ctx, habitID, from, to)
	}

	// Open-ended range: the whole history from `from` onwards.
	all, err := s.repo.ListByHabitID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Completion, 0, len(all))
	for _, c := range all {
		if !c.CompletedAt.Before(from) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CompletionService) Delete(ctx context.Context, id string, userID string) error {
	completion, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.refresh(completion.HabitID)

	return nil
}

func (s *CompletionService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.Completion, error) {
	return s.repo.GetChanges(ctx, userID, since)
}

func (s *CompletionService) ownedHabit(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return habit, nil
}

func (s *CompletionService) refresh(habitID string) {
	if s.worker != nil {
		s.worker.Enqueue(habitID)
	}
}
