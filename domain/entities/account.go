package entities

import "time"

// Account holds the two currency balances of a single user
type Account struct {
	UserID       string    `db:"user_id" json:"user_id"`
	Username     string    `db:"username" json:"username"`
	Points       int64     `db:"points" json:"points"`
	Tickets      int64     `db:"tickets" json:"tickets"`
	ReferralCode string    `db:"referral_code" json:"referral_code"`
	ReferredBy   *string   `db:"referred_by" json:"referred_by,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Balance is a point-in-time view of both balances
type Balance struct {
	Points  int64 `json:"points"`
	Tickets int64 `json:"tickets"`
}

// BalanceOf returns the balance held in the given currency
func (a *Account) BalanceOf(currency Currency) int64 {
	if currency == CurrencyTickets {
		return a.Tickets
	}
	return a.Points
}

// SetBalanceOf replaces the balance held in the given currency
func (a *Account) SetBalanceOf(currency Currency, value int64) {
	if currency == CurrencyTickets {
		a.Tickets = value
		return
	}
	a.Points = value
}

// CanAfford checks if the account holds at least amount of the given currency
func (a *Account) CanAfford(currency Currency, amount int64) bool {
	return a.BalanceOf(currency) >= amount
}

// Balance returns both balances
func (a *Account) Balance() Balance {
	return Balance{Points: a.Points, Tickets: a.Tickets}
}

// HasReferrer returns true if the account was already referred by someone
func (a *Account) HasReferrer() bool {
	return a.ReferredBy != nil && *a.ReferredBy != ""
}
