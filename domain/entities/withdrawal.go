package entities

import (
	"encoding/json"
	"time"
)

// WithdrawalStatus represents the lifecycle of a point redemption
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusApproved  WithdrawalStatus = "approved"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
)

// IsValid returns true if the status is known
func (s WithdrawalStatus) IsValid() bool {
	switch s {
	case WithdrawalStatusPending, WithdrawalStatusApproved, WithdrawalStatusRejected, WithdrawalStatusCompleted:
		return true
	}
	return false
}

// IsFinal returns true if no further transitions are possible
func (s WithdrawalStatus) IsFinal() bool {
	return s == WithdrawalStatusRejected || s == WithdrawalStatusCompleted
}

// CanTransitionTo checks whether a status change is allowed
func (s WithdrawalStatus) CanTransitionTo(next WithdrawalStatus) bool {
	switch s {
	case WithdrawalStatusPending:
		return next == WithdrawalStatusApproved || next == WithdrawalStatusRejected
	case WithdrawalStatusApproved:
		return next == WithdrawalStatusCompleted
	}
	return false
}

// WithdrawalRequest is a user's request to redeem points for a reward product
type WithdrawalRequest struct {
	ID          string           `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"user_id"`
	ProductID   string           `db:"product_id" json:"product_id"`
	PointsUsed  int64            `db:"points_used" json:"points_used"`
	ContactInfo json.RawMessage  `db:"contact_info" json:"contact_info"`
	Status      WithdrawalStatus `db:"status" json:"status"`
	AdminNotes  *string          `db:"admin_notes" json:"admin_notes,omitempty"`
	ProcessedAt *time.Time       `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}
