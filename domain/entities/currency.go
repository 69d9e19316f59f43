package entities

import "fmt"

// Currency identifies one of the two virtual balances an account holds
type Currency string

const (
	CurrencyPoints  Currency = "points"
	CurrencyTickets Currency = "tickets"
)

// AllCurrencies lists every supported currency in display order
var AllCurrencies = []Currency{CurrencyPoints, CurrencyTickets}

// IsValid returns true if the currency is one the ledger knows about
func (c Currency) IsValid() bool {
	return c == CurrencyPoints || c == CurrencyTickets
}

// String returns the string representation of the currency
func (c Currency) String() string {
	return string(c)
}

// ParseCurrency converts a raw string into a Currency
func ParseCurrency(raw string) (Currency, error) {
	c := Currency(raw)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown currency %q: %w", raw, ErrInvalidCurrency)
	}
	return c, nil
}
