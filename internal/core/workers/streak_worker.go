package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type CompletionRepository interface {
	ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker keeps the denormalized streak columns of a habit in sync with
// its completion history.
type StreakWorker struct {
	habitRepo      HabitRepository
	completionRepo CompletionRepository
	loc            *time.Location
	now            func() time.Time
	logger         *zap.Logger
	jobs           chan StreakJob
}

const defaultQueueSize = 100

func NewStreakWorker(hRepo HabitRepository, cRepo CompletionRepository, loc *time.Location, logger *zap.Logger) *StreakWorker {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreakWorker{
		habitRepo:      hRepo,
		completionRepo: cRepo,
		loc:            loc,
		now:            time.Now,
		logger:         logger.Named("streak_worker"),
		jobs:           make(chan StreakJob, defaultQueueSize),
	}
}

// WithClock replaces the reference clock.
func (w *StreakWorker) WithClock(clock func() time.Time) *StreakWorker {
	w.now = clock
	return w
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		w.logger.Info("streak worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.logger.Info("streak worker shutting down")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		w.logger.Warn("queue full, dropping job", zap.String("habit_id", habitID))
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	log := w.logger.With(zap.String("habit_id", job.HabitID))

	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Error("fetch habit failed", zap.Error(err))
		return
	}

	completions, err := w.completionRepo.ListByHabitID(ctx, job.HabitID)
	if err != nil {
		log.Error("fetch completions failed", zap.Error(err))
		return
	}

	current, longest := calculateStreaks(domain.CompletionInstants(completions), w.now(), w.loc)

	if habit.CurrentStreak == current && habit.LongestStreak == longest {
		return
	}

	if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, current, longest); err != nil {
		log.Error("update streaks failed", zap.Error(err))
		return
	}
	log.Debug("streaks updated", zap.Int("current", current), zap.Int("longest", longest))
}

func calculateStreaks(events []time.Time, now time.Time, loc *time.Location) (int, int) {
	return analytics.CurrentStreak(events, now, loc), analytics.LongestStreak(events, loc)
}
