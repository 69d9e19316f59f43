package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewards/database"
	"rewards/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const prizeColumns = `id, name, is_active, tickets_per_entry, pity_threshold, pity_reward_amount, pity_reward_currency, display_order, created_at, updated_at`

// PrizeRepository implements the PrizeRepository interface
type PrizeRepository struct {
	q Queryable
}

// NewPrizeRepository creates a new prize repository
func NewPrizeRepository(db *database.DB) *PrizeRepository {
	return &PrizeRepository{q: db.Pool}
}

// NewPrizeRepositoryScoped creates a new prize repository bound to a transaction
func NewPrizeRepositoryScoped(tx Queryable) *PrizeRepository {
	return &PrizeRepository{q: tx}
}

// GetByID retrieves a prize by ID
func (r *PrizeRepository) GetByID(ctx context.Context, id string) (*entities.Prize, error) {
	query := `SELECT ` + prizeColumns + ` FROM prizes WHERE id = $1`

	prize, err := scanPrize(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prize %s: %w", id, database.StorageError(err))
	}
	return prize, nil
}

// ListActive returns active prizes in display order
func (r *PrizeRepository) ListActive(ctx context.Context) ([]*entities.Prize, error) {
	query := `SELECT ` + prizeColumns + ` FROM prizes WHERE is_active ORDER BY display_order, id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", database.StorageError(err))
	}
	defer rows.Close()

	prizes := make([]*entities.Prize, 0)
	for rows.Next() {
		prize, err := scanPrize(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prize: %w", err)
		}
		prizes = append(prizes, prize)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prizes: %w", database.StorageError(err))
	}
	return prizes, nil
}

// Upsert creates or replaces a prize definition
func (r *PrizeRepository) Upsert(ctx context.Context, prize *entities.Prize) error {
	if prize.ID == "" {
		prize.ID = uuid.NewString()
	}

	query := `
		INSERT INTO prizes (id, name, is_active, tickets_per_entry, pity_threshold, pity_reward_amount, pity_reward_currency, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			is_active = EXCLUDED.is_active,
			tickets_per_entry = EXCLUDED.tickets_per_entry,
			pity_threshold = EXCLUDED.pity_threshold,
			pity_reward_amount = EXCLUDED.pity_reward_amount,
			pity_reward_currency = EXCLUDED.pity_reward_currency,
			display_order = EXCLUDED.display_order,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		prize.ID,
		prize.Name,
		prize.IsActive,
		prize.TicketsPerEntry,
		prize.PityThreshold,
		prize.PityRewardAmount,
		string(prize.PityRewardCurrency),
		prize.DisplayOrder,
	).Scan(&prize.CreatedAt, &prize.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert prize %s: %w", prize.ID, database.StorageError(err))
	}
	return nil
}

func scanPrize(row pgx.Row) (*entities.Prize, error) {
	var prize entities.Prize
	var currency string
	err := row.Scan(
		&prize.ID,
		&prize.Name,
		&prize.IsActive,
		&prize.TicketsPerEntry,
		&prize.PityThreshold,
		&prize.PityRewardAmount,
		&currency,
		&prize.DisplayOrder,
		&prize.CreatedAt,
		&prize.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	prize.PityRewardCurrency = entities.Currency(currency)
	return &prize, nil
}

const prizeEntryColumns = `id, user_id, prize_id, request_id, tickets_used, pity_triggered, created_at`

// PrizeEntryRepository implements the PrizeEntryRepository interface
type PrizeEntryRepository struct {
	q Queryable
}

// NewPrizeEntryRepository creates a new prize entry repository
func NewPrizeEntryRepository(db *database.DB) *PrizeEntryRepository {
	return &PrizeEntryRepository{q: db.Pool}
}

// NewPrizeEntryRepositoryScoped creates a new prize entry repository bound to a transaction
func NewPrizeEntryRepositoryScoped(tx Queryable) *PrizeEntryRepository {
	return &PrizeEntryRepository{q: tx}
}

// Create inserts an entry. A reused request id surfaces as ErrAlreadyExists.
func (r *PrizeEntryRepository) Create(ctx context.Context, entry *entities.PrizeEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO prize_entries (id, user_id, prize_id, request_id, tickets_used, pity_triggered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.PrizeID,
		entry.RequestID,
		entry.TicketsUsed,
		entry.PityTriggered,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prize entry: %w", database.StorageError(err))
	}
	return nil
}

// GetByRequestID returns the entry created for a request id
func (r *PrizeEntryRepository) GetByRequestID(ctx context.Context, userID, requestID string) (*entities.PrizeEntry, error) {
	query := `SELECT ` + prizeEntryColumns + ` FROM prize_entries WHERE user_id = $1 AND request_id = $2`

	var entry entities.PrizeEntry
	err := r.q.QueryRow(ctx, query, userID, requestID).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.PrizeID,
		&entry.RequestID,
		&entry.TicketsUsed,
		&entry.PityTriggered,
		&entry.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prize entry by request id: %w", database.StorageError(err))
	}
	return &entry, nil
}

// ListByUser returns the user's entries newest first
func (r *PrizeEntryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.PrizeEntry, error) {
	query := `
		SELECT ` + prizeEntryColumns + `
		FROM prize_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list prize entries: %w", database.StorageError(err))
	}
	defer rows.Close()

	entries := make([]*entities.PrizeEntry, 0)
	for rows.Next() {
		var entry entities.PrizeEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.PrizeID,
			&entry.RequestID,
			&entry.TicketsUsed,
			&entry.PityTriggered,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prize entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prize entries: %w", database.StorageError(err))
	}
	return entries, nil
}
