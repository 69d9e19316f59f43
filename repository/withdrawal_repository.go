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

const withdrawalColumns = `id, user_id, product_id, points_used, contact_info, status, admin_notes, processed_at, created_at, updated_at`

// WithdrawalRepository implements the WithdrawalRepository interface
type WithdrawalRepository struct {
	q Queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

// NewWithdrawalRepositoryScoped creates a new withdrawal repository bound to a transaction
func NewWithdrawalRepositoryScoped(tx Queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

// Create inserts a withdrawal request
func (r *WithdrawalRepository) Create(ctx context.Context, request *entities.WithdrawalRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.UpdatedAt.IsZero() {
		request.UpdatedAt = request.CreatedAt
	}
	if request.Status == "" {
		request.Status = entities.WithdrawalStatusPending
	}

	contactInfo := "{}"
	if len(request.ContactInfo) > 0 {
		contactInfo = string(request.ContactInfo)
	}

	query := `
		INSERT INTO withdrawal_requests
		(id, user_id, product_id, points_used, contact_info, status, admin_notes, processed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10)
	`
	_, err := r.q.Exec(ctx, query,
		request.ID,
		request.UserID,
		request.ProductID,
		request.PointsUsed,
		contactInfo,
		string(request.Status),
		request.AdminNotes,
		request.ProcessedAt,
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal request: %w", database.StorageError(err))
	}
	return nil
}

// GetForUpdate returns the request locked until the transaction ends
func (r *WithdrawalRepository) GetForUpdate(ctx context.Context, id string) (*entities.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`

	request, err := scanWithdrawal(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock withdrawal request %s: %w", id, database.StorageError(err))
	}
	return request, nil
}

// ListByUser returns the user's requests newest first
func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawal requests: %w", database.StorageError(err))
	}
	defer rows.Close()

	requests := make([]*entities.WithdrawalRequest, 0)
	for rows.Next() {
		request, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawal requests: %w", database.StorageError(err))
	}
	return requests, nil
}

// UpdateStatus persists status, admin notes and processed time
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, request *entities.WithdrawalRequest) error {
	query := `
		UPDATE withdrawal_requests
		SET status = $1, admin_notes = $2, processed_at = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.q.Exec(ctx, query,
		string(request.Status),
		request.AdminNotes,
		request.ProcessedAt,
		request.UpdatedAt,
		request.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal request %s: %w", request.ID, database.StorageError(err))
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal request %s: %w", request.ID, entities.ErrNotFound)
	}
	return nil
}

func scanWithdrawal(row pgx.Row) (*entities.WithdrawalRequest, error) {
	var request entities.WithdrawalRequest
	var status string
	var contactInfo []byte
	err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.ProductID,
		&request.PointsUsed,
		&contactInfo,
		&status,
		&request.AdminNotes,
		&request.ProcessedAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	request.ContactInfo = contactInfo
	request.Status = entities.WithdrawalStatus(status)
	return &request, nil
}
