package entities

import "time"

// RewardProduct is something a user can redeem points for
type RewardProduct struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	PointsRequired int64     `db:"points_required" json:"points_required"`
	Stock          *int      `db:"stock" json:"stock,omitempty"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	DisplayOrder   int       `db:"display_order" json:"display_order"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// IsUnlimited returns true if the product has no stock cap
func (p *RewardProduct) IsUnlimited() bool {
	return p.Stock == nil
}

// InStock returns true if at least one unit can be redeemed
func (p *RewardProduct) InStock() bool {
	return p.IsUnlimited() || *p.Stock > 0
}
