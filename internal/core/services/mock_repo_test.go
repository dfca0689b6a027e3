package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

type MockRepo struct {
	store         map[string]*domain.Habit
	simulateError error
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		store: make(map[string]*domain.Habit),
	}
}

func (m *MockRepo) Create(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}

	if _, exists := m.store[habit.ID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}

	if habit.Version == 0 {
		habit.Version = 1
	}
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	h, ok := m.store[id]
	if !ok || h.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *MockRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	list := []*domain.Habit{}
	for _, h := range m.store {
		if h.UserID == userID && h.DeletedAt == nil {
			clone := *h
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (m *MockRepo) Update(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}

	stored, ok := m.store[habit.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockRepo) Delete(ctx context.Context, id string) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	now := time.Now().UTC()
	h.DeletedAt = &now
	h.Version++
	h.UpdatedAt = now
	return nil
}

func (m *MockRepo) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	var changes []*domain.Habit
	for _, h := range m.store {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			clone := *h
			changes = append(changes, &clone)
		}
	}
	return changes, nil
}

func (m *MockRepo) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.CurrentStreak = current
	h.LongestStreak = longest
	return nil
}

type MockCompletionRepo struct {
	store         map[string]*domain.Completion
	simulateError error
}

func NewMockCompletionRepo() *MockCompletionRepo {
	return &MockCompletionRepo{
		store: make(map[string]*domain.Completion),
	}
}

func (m *MockCompletionRepo) Create(ctx context.Context, c *domain.Completion) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	clone := *c
	m.store[c.ID] = &clone
	return nil
}

func (m *MockCompletionRepo) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	c, ok := m.store[id]
	if !ok || c.DeletedAt != nil {
		return nil, domain.ErrCompletionNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *MockCompletionRepo) Delete(ctx context.Context, id string, userID string) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	c, ok := m.store[id]
	if !ok || c.UserID != userID || c.DeletedAt != nil {
		return domain.ErrCompletionNotFound
	}
	now := time.Now().UTC()
	c.DeletedAt = &now
	c.UpdatedAt = now
	return nil
}

func (m *MockCompletionRepo) filter(keep func(*domain.Completion) bool) []*domain.Completion {
	out := []*domain.Completion{}
	for _, c := range m.store {
		if c.DeletedAt == nil && keep(c) {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	return out
}

func (m *MockCompletionRepo) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	return m.filter(func(c *domain.Completion) bool { return c.HabitID == habitID }), nil
}

func (m *MockCompletionRepo) ListByHabitIDWithRange(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Completion, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	return m.filter(func(c *domain.Completion) bool {
		return c.HabitID == habitID && !c.CompletedAt.Before(from) && c.CompletedAt.Before(to)
	}), nil
}

func (m *MockCompletionRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Completion, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	return m.filter(func(c *domain.Completion) bool { return c.UserID == userID }), nil
}

func (m *MockCompletionRepo) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Completion, error) {
	var out []*domain.Completion
	for _, c := range m.store {
		if c.UserID == userID && c.UpdatedAt.After(since) {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

type spyRefresher struct {
	mu  sync.Mutex
	ids []string
}

func (s *spyRefresher) Enqueue(habitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, habitID)
}

func (s *spyRefresher) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}
