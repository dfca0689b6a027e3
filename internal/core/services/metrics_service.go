package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

type MetricsService struct {
	habitRepo      domain.HabitRepository
	completionRepo domain.CompletionRepository
	defaults       analytics.Options
	now            func() time.Time
}

func NewMetricsService(habitRepo domain.HabitRepository, completionRepo domain.CompletionRepository, defaults analytics.Options, clock func() time.Time) *MetricsService {
	if clock == nil {
		clock = time.Now
	}
	return &MetricsService{
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		defaults:       defaults,
		now:            clock,
	}
}

// MetricsQuery carries per-request overrides of the configured defaults.
type MetricsQuery struct {
	UserID          string
	HabitID         string
	Location        *time.Location
	CalendarMonth   time.Time
	LookbackDays    int
	IncludeArchived bool
	// Now overrides the service clock when set.
	Now time.Time
}

func (s *MetricsService) reference(q MetricsQuery) time.Time {
	if !q.Now.IsZero() {
		return q.Now
	}
	return s.now()
}

func (s *MetricsService) options(q MetricsQuery) analytics.Options {
	opts := s.defaults
	if q.Location != nil {
		opts.Location = q.Location
	}
	if !q.CalendarMonth.IsZero() {
		opts.CalendarMonth = q.CalendarMonth
	}
	if q.LookbackDays > 0 {
		opts.LookbackDays = q.LookbackDays
	}
	return opts
}

func (s *MetricsService) GetHabitMetrics(ctx context.Context, q MetricsQuery) (*domain.HabitMetrics, error) {
	habit, err := s.habitRepo.GetByID(ctx, q.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != q.UserID {
		return nil, domain.ErrUnauthorized
	}

	completions, err := s.completionRepo.ListByHabitID(ctx, habit.ID)
	if err != nil {
		return nil, err
	}

	snapshot := habit.Snapshot(domain.CompletionInstants(completions))

	metrics, err := analytics.ComputeHabitMetrics(snapshot, s.reference(q), s.options(q))
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (s *MetricsService) GetDashboard(ctx context.Context, q MetricsQuery) (*domain.DashboardMetrics, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	completions, err := s.completionRepo.ListByUserID(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	byHabit := make(map[string][]*domain.Completion)
	for _, c := range completions {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c)
	}

	snapshots := make([]domain.HabitSnapshot, 0, len(habits))
	for _, h := range habits {
		if h.IsArchived() && !q.IncludeArchived {
			continue
		}
		snapshots = append(snapshots, h.Snapshot(domain.CompletionInstants(byHabit[h.ID])))
	}

	dashboard, err := analytics.ComputeDashboard(snapshots, s.reference(q), s.options(q))
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// ComputeFromRecords runs the engine over habit records supplied by the
// caller instead of the stored ones.
func (s *MetricsService) ComputeFromRecords(records []domain.HabitRecord, q MetricsQuery) (*domain.DashboardMetrics, error) {
	opts := s.options(q)

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
		opts.Location = loc
	}

	snapshots := make([]domain.HabitSnapshot, 0, len(records))
	for _, rec := range records {
		snapshots = append(snapshots, analytics.SnapshotFromRecord(rec, loc))
	}

	dashboard, err := analytics.ComputeDashboard(snapshots, s.reference(q), opts)
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}
