package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

const habitColumns = `
    id, user_id, name, description, color, icon, tags, category_hint,
    expected_frequency, sort_order, current_streak, longest_streak,
    version, created_at, updated_at, archived_at, deleted_at`

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var tagsJSON, freqJSON []byte

	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Color, &h.Icon, &tagsJSON, &h.CategoryHint,
		&freqJSON, &h.SortOrder, &h.CurrentStreak, &h.LongestStreak,
		&h.Version, &h.CreatedAt, &h.UpdatedAt, &h.ArchivedAt, &h.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	h.Tags = []string{}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &h.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if len(freqJSON) > 0 {
		h.ExpectedFrequency = json.RawMessage(freqJSON)
	}

	return &h, nil
}

func (r *PostgresHabitRepository) scanRows(rows *sql.Rows) ([]*domain.Habit, error) {
	defer rows.Close()

	habits := []*domain.Habit{}
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func encodeHabitJSON(h *domain.Habit) (string, *string, error) {
	tags := h.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	var freq *string
	if len(h.ExpectedFrequency) > 0 {
		s := string(h.ExpectedFrequency)
		freq = &s
	}
	return string(tagsJSON), freq, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	tagsJSON, freqJSON, err := encodeHabitJSON(h)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO habits (
            id, user_id, name, description, color, icon, tags, category_hint,
            expected_frequency, sort_order, current_streak, longest_streak,
            version, created_at, updated_at, archived_at, deleted_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8,
            $9, $10, 0, 0,
            1, $11, $12, $13, NULL
        )`

	_, err = r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Name, h.Description, h.Color, h.Icon, tagsJSON, h.CategoryHint,
		freqJSON, h.SortOrder,
		h.CreatedAt, h.UpdatedAt, h.ArchivedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT` + habitColumns + ` FROM habits WHERE id = $1 AND deleted_at IS NULL`

	h, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `SELECT` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY sort_order ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return r.scanRows(rows)
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	tagsJSON, freqJSON, err := encodeHabitJSON(h)
	if err != nil {
		return err
	}

	query := `
        UPDATE habits SET
            name=$1, description=$2, color=$3, icon=$4, tags=$5, category_hint=$6,
            expected_frequency=$7, sort_order=$8, archived_at=$9,
            updated_at=NOW(), version = version + 1
        WHERE id=$10 AND version=$11 AND deleted_at IS NULL
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		h.Name, h.Description, h.Color, h.Icon, tagsJSON, h.CategoryHint,
		freqJSON, h.SortOrder, h.ArchivedAt,
		h.ID, h.Version,
	)

	var newVersion int
	var newUpdatedAt time.Time

	if err := row.Scan(&newVersion, &newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var count int
			existsQuery := `SELECT count(*) FROM habits WHERE id = $1 AND deleted_at IS NULL`
			if checkErr := r.db.QueryRowContext(ctx, existsQuery, h.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}

			if count == 0 {
				return domain.ErrHabitNotFound
			}
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	query := `SELECT` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	return r.scanRows(rows)
}

// UpdateStreaks leaves version and updated_at untouched: streaks are derived
// server side and must not conflict with client edits.
func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
        UPDATE habits
        SET current_streak = $1, longest_streak = $2
        WHERE id = $3 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}
