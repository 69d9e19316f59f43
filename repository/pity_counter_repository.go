package repository

import (
	"context"
	"errors"
	"fmt"

	"rewards/database"
	"rewards/domain/entities"

	"github.com/jackc/pgx/v5"
)

const pityCounterColumns = `user_id, prize_id, current_count, last_reset_at, updated_at`

// PityCounterRepository implements the PityCounterRepository interface
type PityCounterRepository struct {
	q Queryable
}

// NewPityCounterRepository creates a new pity counter repository
func NewPityCounterRepository(db *database.DB) *PityCounterRepository {
	return &PityCounterRepository{q: db.Pool}
}

// NewPityCounterRepositoryScoped creates a new pity counter repository bound to a transaction
func NewPityCounterRepositoryScoped(tx Queryable) *PityCounterRepository {
	return &PityCounterRepository{q: tx}
}

// Get reads a counter without locking
func (r *PityCounterRepository) Get(ctx context.Context, userID, prizeID string) (*entities.PrizePityCounter, error) {
	query := `SELECT ` + pityCounterColumns + ` FROM prize_pity_counters WHERE user_id = $1 AND prize_id = $2`

	counter, err := scanPityCounter(r.q.QueryRow(ctx, query, userID, prizeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pity counter: %w", database.StorageError(err))
	}
	return counter, nil
}

// GetOrCreateForUpdate creates the counter at zero when missing and locks it
func (r *PityCounterRepository) GetOrCreateForUpdate(ctx context.Context, userID, prizeID string) (*entities.PrizePityCounter, error) {
	insert := `
		INSERT INTO prize_pity_counters (user_id, prize_id, current_count)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id, prize_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, insert, userID, prizeID); err != nil {
		return nil, fmt.Errorf("failed to create pity counter: %w", database.StorageError(err))
	}

	query := `SELECT ` + pityCounterColumns + ` FROM prize_pity_counters WHERE user_id = $1 AND prize_id = $2 FOR UPDATE`
	counter, err := scanPityCounter(r.q.QueryRow(ctx, query, userID, prizeID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock pity counter: %w", database.StorageError(err))
	}
	return counter, nil
}

// Save persists the counter's count and reset time
func (r *PityCounterRepository) Save(ctx context.Context, counter *entities.PrizePityCounter) error {
	query := `
		UPDATE prize_pity_counters
		SET current_count = $1, last_reset_at = $2, updated_at = $3
		WHERE user_id = $4 AND prize_id = $5
	`
	result, err := r.q.Exec(ctx, query,
		counter.CurrentCount,
		counter.LastResetAt,
		counter.UpdatedAt,
		counter.UserID,
		counter.PrizeID,
	)
	if err != nil {
		return fmt.Errorf("failed to save pity counter: %w", database.StorageError(err))
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("pity counter %s/%s: %w", counter.UserID, counter.PrizeID, entities.ErrNotFound)
	}
	return nil
}

// ListByUser returns every counter the user has
func (r *PityCounterRepository) ListByUser(ctx context.Context, userID string) ([]*entities.PrizePityCounter, error) {
	query := `SELECT ` + pityCounterColumns + ` FROM prize_pity_counters WHERE user_id = $1 ORDER BY prize_id`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pity counters: %w", database.StorageError(err))
	}
	defer rows.Close()

	counters := make([]*entities.PrizePityCounter, 0)
	for rows.Next() {
		counter, err := scanPityCounter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pity counter: %w", err)
		}
		counters = append(counters, counter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pity counters: %w", database.StorageError(err))
	}
	return counters, nil
}

func scanPityCounter(row pgx.Row) (*entities.PrizePityCounter, error) {
	var counter entities.PrizePityCounter
	err := row.Scan(
		&counter.UserID,
		&counter.PrizeID,
		&counter.CurrentCount,
		&counter.LastResetAt,
		&counter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &counter, nil
}
