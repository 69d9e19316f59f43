package repository

import (
	"context"
	"errors"
	"fmt"

	"rewards/database"
	"rewards/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const rewardProductColumns = `id, name, points_required, stock, is_active, display_order, created_at, updated_at`

// RewardProductRepository implements the RewardProductRepository interface
type RewardProductRepository struct {
	q Queryable
}

// NewRewardProductRepository creates a new reward product repository
func NewRewardProductRepository(db *database.DB) *RewardProductRepository {
	return &RewardProductRepository{q: db.Pool}
}

// NewRewardProductRepositoryScoped creates a new reward product repository bound to a transaction
func NewRewardProductRepositoryScoped(tx Queryable) *RewardProductRepository {
	return &RewardProductRepository{q: tx}
}

// GetForUpdate returns the product locked until the transaction ends
func (r *RewardProductRepository) GetForUpdate(ctx context.Context, id string) (*entities.RewardProduct, error) {
	query := `SELECT ` + rewardProductColumns + ` FROM reward_products WHERE id = $1 FOR UPDATE`

	product, err := scanRewardProduct(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock reward product %s: %w", id, database.StorageError(err))
	}
	return product, nil
}

// ListActive returns active products in display order
func (r *RewardProductRepository) ListActive(ctx context.Context) ([]*entities.RewardProduct, error) {
	query := `SELECT ` + rewardProductColumns + ` FROM reward_products WHERE is_active ORDER BY display_order, id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward products: %w", database.StorageError(err))
	}
	defer rows.Close()

	products := make([]*entities.RewardProduct, 0)
	for rows.Next() {
		product, err := scanRewardProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reward products: %w", database.StorageError(err))
	}
	return products, nil
}

// Upsert creates or replaces a product
func (r *RewardProductRepository) Upsert(ctx context.Context, product *entities.RewardProduct) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	query := `
		INSERT INTO reward_products (id, name, points_required, stock, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			points_required = EXCLUDED.points_required,
			stock = EXCLUDED.stock,
			is_active = EXCLUDED.is_active,
			display_order = EXCLUDED.display_order,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.PointsRequired,
		product.Stock,
		product.IsActive,
		product.DisplayOrder,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert reward product %s: %w", product.ID, database.StorageError(err))
	}
	return nil
}

// UpdateStock replaces the stock of a finite product
func (r *RewardProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	query := `UPDATE reward_products SET stock = $1, updated_at = NOW() WHERE id = $2 AND stock IS NOT NULL`
	result, err := r.q.Exec(ctx, query, stock, id)
	if err != nil {
		return fmt.Errorf("failed to update stock for %s: %w", id, database.StorageError(err))
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("finite reward product %s: %w", id, entities.ErrNotFound)
	}
	return nil
}

func scanRewardProduct(row pgx.Row) (*entities.RewardProduct, error) {
	var product entities.RewardProduct
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.PointsRequired,
		&product.Stock,
		&product.IsActive,
		&product.DisplayOrder,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
