package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewards/database"
	"rewards/domain/entities"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `user_id, username, points, tickets, referral_code, referred_by, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// NewAccountRepositoryScoped creates a new account repository bound to a transaction
func NewAccountRepositoryScoped(tx Queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByUserID retrieves an account without locking it
func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", userID, err)
	}
	return account, nil
}

// GetForUpdate retrieves an account and locks its row for the rest of the transaction
func (r *AccountRepository) GetForUpdate(ctx context.Context, userID string) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 FOR UPDATE`
	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", userID, err)
	}
	return account, nil
}

// GetByReferralCode retrieves the account owning a referral code
func (r *AccountRepository) GetByReferralCode(ctx context.Context, code string) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE referral_code = $1`
	account, err := scanAccount(r.q.QueryRow(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by referral code: %w", err)
	}
	return account, nil
}

// Create inserts a new account with zero balances
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	account.UpdatedAt = account.CreatedAt

	query := `
		INSERT INTO accounts (user_id, username, points, tickets, referral_code, created_at, updated_at)
		VALUES ($1, $2, 0, 0, $3, $4, $4)
	`
	_, err := r.q.Exec(ctx, query, account.UserID, account.Username, account.ReferralCode, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account %s: %w", account.UserID, database.StorageError(err))
	}
	account.Points = 0
	account.Tickets = 0
	return nil
}

// GetBalance returns a single balance
func (r *AccountRepository) GetBalance(ctx context.Context, userID string, currency entities.Currency) (int64, error) {
	column, err := balanceColumn(currency)
	if err != nil {
		return 0, err
	}

	var balance int64
	err = r.q.QueryRow(ctx, `SELECT `+column+` FROM accounts WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get %s balance for %s: %w", currency, userID, database.StorageError(err))
	}
	return balance, nil
}

// SetBalance replaces a single balance
func (r *AccountRepository) SetBalance(ctx context.Context, userID string, currency entities.Currency, value int64) error {
	column, err := balanceColumn(currency)
	if err != nil {
		return err
	}

	query := `UPDATE accounts SET ` + column + ` = $1, updated_at = NOW() WHERE user_id = $2`
	result, err := r.q.Exec(ctx, query, value, userID)
	if err != nil {
		return fmt.Errorf("failed to set %s balance for %s: %w", currency, userID, database.StorageError(err))
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}
	return nil
}

// SetReferredBy records who referred the user
func (r *AccountRepository) SetReferredBy(ctx context.Context, userID, referrerID string) error {
	query := `UPDATE accounts SET referred_by = $1, updated_at = NOW() WHERE user_id = $2`
	result, err := r.q.Exec(ctx, query, referrerID, userID)
	if err != nil {
		return fmt.Errorf("failed to set referrer for %s: %w", userID, database.StorageError(err))
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}
	return nil
}

// balanceColumn maps a currency to its column. Only known currencies reach the query text.
func balanceColumn(currency entities.Currency) (string, error) {
	switch currency {
	case entities.CurrencyPoints:
		return "points", nil
	case entities.CurrencyTickets:
		return "tickets", nil
	}
	return "", fmt.Errorf("currency %q: %w", currency, entities.ErrInvalidCurrency)
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var account entities.Account
	err := row.Scan(
		&account.UserID,
		&account.Username,
		&account.Points,
		&account.Tickets,
		&account.ReferralCode,
		&account.ReferredBy,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.StorageError(err)
	}
	return &account, nil
}
