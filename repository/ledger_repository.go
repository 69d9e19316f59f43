package repository

import (
	"context"
	"fmt"

	"rewards/database"
	"rewards/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `id, seq, user_id, currency, amount, balance_after, transaction_type, description, reference_id, created_at`

// LedgerRepository implements the LedgerRepository interface
type LedgerRepository struct {
	q Queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// NewLedgerRepositoryScoped creates a new ledger repository bound to a transaction
func NewLedgerRepositoryScoped(tx Queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Append stores a new immutable entry.
// created_at uses clock_timestamp() so entries inside one transaction keep distinct times.
func (r *LedgerRepository) Append(ctx context.Context, entry *entities.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO ledger_entries
		(id, user_id, currency, amount, balance_after, transaction_type, description, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, clock_timestamp())
		RETURNING seq, created_at
	`
	err := r.q.QueryRow(ctx, query,
		entry.ID,
		entry.UserID,
		string(entry.Currency),
		entry.Amount,
		entry.BalanceAfter,
		string(entry.TransactionType),
		entry.Description,
		entry.ReferenceID,
	).Scan(&entry.Seq, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry for %s: %w", entry.UserID, database.StorageError(err))
	}
	return nil
}

// History returns entries for a user newest first
func (r *LedgerRepository) History(ctx context.Context, userID string, currency *entities.Currency, limit, offset int) ([]*entities.LedgerEntry, error) {
	var currencyFilter *string
	if currency != nil {
		c := string(*currency)
		currencyFilter = &c
	}

	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE user_id = $1 AND ($2::text IS NULL OR currency = $2)
		ORDER BY created_at DESC, seq DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.q.Query(ctx, query, userID, currencyFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger history for %s: %w", userID, database.StorageError(err))
	}
	return collectLedgerEntries(rows)
}

// GetByReference returns every entry of a user pointing at referenceID, oldest first
func (r *LedgerRepository) GetByReference(ctx context.Context, userID, referenceID string) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE user_id = $1 AND reference_id = $2
		ORDER BY seq ASC
	`
	rows, err := r.q.Query(ctx, query, userID, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries by reference: %w", database.StorageError(err))
	}
	return collectLedgerEntries(rows)
}

func collectLedgerEntries(rows pgx.Rows) ([]*entities.LedgerEntry, error) {
	defer rows.Close()

	entries := make([]*entities.LedgerEntry, 0)
	for rows.Next() {
		var entry entities.LedgerEntry
		var currency, txType string
		if err := rows.Scan(
			&entry.ID,
			&entry.Seq,
			&entry.UserID,
			&currency,
			&entry.Amount,
			&entry.BalanceAfter,
			&txType,
			&entry.Description,
			&entry.ReferenceID,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entry.Currency = entities.Currency(currency)
		entry.TransactionType = entities.TransactionType(txType)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", database.StorageError(err))
	}
	return entries, nil
}
