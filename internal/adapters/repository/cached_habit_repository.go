package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

// CachedHabitRepository is a read-through cache for the per-user habit list.
// Any write on a user's habits drops the cached list.
type CachedHabitRepository struct {
	next   domain.HabitRepository
	store  *cache.JSONStore
	logger *zap.Logger
}

func NewCachedHabitRepository(next domain.HabitRepository, store *cache.JSONStore, logger *zap.Logger) *CachedHabitRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedHabitRepository{
		next:   next,
		store:  store,
		logger: logger.Named("habit_cache"),
	}
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID string) {
	if err := r.store.Delete(ctx, userID); err != nil {
		r.logger.Warn("invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	var habits []*domain.Habit
	found, err := r.store.Get(ctx, userID, &habits)
	if found {
		return habits, nil
	}
	if err != nil {
		r.logger.Warn("cache read failed", zap.String("user_id", userID), zap.Error(err))
	}

	habits, err = r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := r.store.Set(ctx, userID, habits); err != nil {
		r.logger.Warn("cache write failed", zap.String("user_id", userID), zap.Error(err))
	}

	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	return r.next.GetChanges(ctx, userID, since)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}

	return r.next.Delete(ctx, id)
}

func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}

	return r.next.UpdateStreaks(ctx, id, current, longest)
}
