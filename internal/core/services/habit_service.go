package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

type HabitService struct {
	repo domain.HabitRepository
}

func NewHabitService(repo domain.HabitRepository) *HabitService {
	return &HabitService{
		repo: repo,
	}
}

type CreateHabitInput struct {
	UserID            string
	Name              string
	Description       string
	Color             string
	Icon              string
	Tags              []string
	CategoryHint      string
	ExpectedFrequency json.RawMessage
}

// UpdateHabitInput follows merge semantics: empty strings and nil slices keep
// the stored value.
type UpdateHabitInput struct {
	ID                string
	UserID            string
	Name              string
	Description       string
	Color             string
	Icon              string
	Tags              []string
	CategoryHint      string
	ExpectedFrequency json.RawMessage
	Version           int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.UserID, domain.HabitAttributes{
		Name:              input.Name,
		Description:       input.Description,
		Color:             input.Color,
		Icon:              input.Icon,
		Tags:              input.Tags,
		CategoryHint:      input.CategoryHint,
		ExpectedFrequency: input.ExpectedFrequency,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	return s.getOwned(ctx, id, userID)
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.getOwned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	tags := habit.Tags
	if input.Tags != nil {
		tags = input.Tags
	}

	freq := habit.ExpectedFrequency
	if len(input.ExpectedFrequency) > 0 {
		freq = input.ExpectedFrequency
	}

	err = habit.Update(domain.HabitAttributes{
		Name:              mergeString(input.Name, habit.Name),
		Description:       mergeString(input.Description, habit.Description),
		Color:             mergeString(input.Color, habit.Color),
		Icon:              mergeString(input.Icon, habit.Icon),
		Tags:              tags,
		CategoryHint:      mergeString(input.CategoryHint, habit.CategoryHint),
		ExpectedFrequency: freq,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Reorder(ctx context.Context, id, userID string, position int) (*domain.Habit, error) {
	habit, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := habit.ChangePosition(position); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if habit.IsArchived() {
		return habit, nil
	}

	habit.Archive()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !habit.IsArchived() {
		return habit, nil
	}

	habit.Restore()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// getOwned hides habits of other users behind ErrHabitNotFound.
func (s *HabitService) getOwned(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}
