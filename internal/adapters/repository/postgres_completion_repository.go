package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
)

type PostgresCompletionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompletionRepository(db *sqlx.DB) *PostgresCompletionRepository {
	return &PostgresCompletionRepository{db: db}
}

const completionColumns = `id, habit_id, user_id, completed_at, created_at, updated_at, deleted_at`

func (r *PostgresCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `
		INSERT INTO completions (` + completionColumns + `)
		VALUES (:id, :habit_id, :user_id, :completed_at, :created_at, :updated_at, :deleted_at)`

	_, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrHabitNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrInvalidCompletion
		}
		return fmt.Errorf("failed to insert completion: %w", err)
	}
	return nil
}

func (r *PostgresCompletionRepository) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	var c domain.Completion
	query := `SELECT ` + completionColumns + ` FROM completions WHERE id = $1 AND deleted_at IS NULL`

	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompletionNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCompletionRepository) Delete(ctx context.Context, id string, userID string) error {
	query := `
		UPDATE completions
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1
		  AND user_id = $2
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCompletionNotFound
	}
	return nil
}

func (r *PostgresCompletionRepository) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Completion, error) {
	list := []*domain.Completion{}

	query := `
		SELECT ` + completionColumns + ` FROM completions
		WHERE habit_id = $1 AND deleted_at IS NULL
		ORDER BY completed_at ASC`

	if err := r.db.SelectContext(ctx, &list, query, habitID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PostgresCompletionRepository) ListByHabitIDWithRange(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Completion, error) {
	list := []*domain.Completion{}

	query := `
		SELECT ` + completionColumns + ` FROM completions
		WHERE habit_id = $1
		  AND completed_at >= $2
		  AND completed_at < $3
		  AND deleted_at IS NULL
		ORDER BY completed_at ASC`

	if err := r.db.SelectContext(ctx, &list, query, habitID, from, to); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PostgresCompletionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Completion, error) {
	list := []*domain.Completion{}

	query := `
		SELECT ` + completionColumns + ` FROM completions
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY completed_at ASC`

	if err := r.db.SelectContext(ctx, &list, query, userID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PostgresCompletionRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Completion, error) {
	list := []*domain.Completion{}

	query := `
		SELECT ` + completionColumns + ` FROM completions
		WHERE user_id = $1
		  AND updated_at > $2
		ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &list, query, userID, since); err != nil {
		return nil, err
	}
	return list, nil
}
