package entities

import (
	"errors"
	"time"
)

// LedgerEntry is an immutable record of one balance mutation
type LedgerEntry struct {
	ID              string          `db:"id" json:"id"`
	Seq             int64           `db:"seq" json:"-"`
	UserID          string          `db:"user_id" json:"user_id"`
	Currency        Currency        `db:"currency" json:"currency"`
	Amount          int64           `db:"amount" json:"amount"`
	BalanceAfter    int64           `db:"balance_after" json:"balance_after"`
	TransactionType TransactionType `db:"transaction_type" json:"transaction_type"`
	Description     *string         `db:"description" json:"description,omitempty"`
	ReferenceID     *string         `db:"reference_id" json:"reference_id,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// IsCredit returns true if the entry increased the balance
func (e *LedgerEntry) IsCredit() bool {
	return e.Amount > 0
}

// IsDebit returns true if the entry decreased the balance
func (e *LedgerEntry) IsDebit() bool {
	return e.Amount < 0
}

// BalanceBefore returns the balance the entry was applied to
func (e *LedgerEntry) BalanceBefore() int64 {
	return e.BalanceAfter - e.Amount
}

// Validate performs basic validation on the entry before it is appended
func (e *LedgerEntry) Validate() error {
	if e.UserID == "" {
		return errors.New("ledger entry requires a user")
	}
	if !e.Currency.IsValid() {
		return ErrInvalidCurrency
	}
	if e.Amount == 0 {
		return errors.New("change amount cannot be zero")
	}
	if e.BalanceAfter < 0 {
		return errors.New("balance after cannot be negative")
	}
	if e.BalanceBefore() < 0 {
		return errors.New("balance calculation is inconsistent")
	}
	if !e.TransactionType.IsValid() {
		return errors.New("unknown transaction type")
	}
	return nil
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
