package entities

import (
	"errors"
	"time"
)

// Prize is reference data for a ticket-funded drawing with a pity guarantee
type Prize struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	TicketsPerEntry    int64     `db:"tickets_per_entry" json:"tickets_per_entry"`
	PityThreshold      int       `db:"pity_threshold" json:"pity_threshold"`
	PityRewardAmount   int64     `db:"pity_reward_amount" json:"pity_reward_amount"`
	PityRewardCurrency Currency  `db:"pity_reward_currency" json:"pity_reward_currency"`
	DisplayOrder       int       `db:"display_order" json:"display_order"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the prize configuration
func (p *Prize) Validate() error {
	if p.TicketsPerEntry <= 0 {
		return errors.New("tickets per entry must be positive")
	}
	if p.PityThreshold < 1 {
		return errors.New("pity threshold must be at least 1")
	}
	if p.PityRewardAmount <= 0 {
		return errors.New("pity reward amount must be positive")
	}
	if !p.PityRewardCurrency.IsValid() {
		return ErrInvalidCurrency
	}
	return nil
}

// PityPercentage returns how far count is towards the pity threshold, in percent
func (p *Prize) PityPercentage(count int) float64 {
	if p.PityThreshold <= 0 {
		return 0
	}
	return float64(count) / float64(p.PityThreshold) * 100.0
}

// PrizeEntry records one participation in a prize drawing
type PrizeEntry struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	PrizeID       string    `db:"prize_id" json:"prize_id"`
	RequestID     string    `db:"request_id" json:"request_id"`
	TicketsUsed   int64     `db:"tickets_used" json:"tickets_used"`
	PityTriggered bool      `db:"pity_triggered" json:"pity_triggered"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// PrizeEntryResult is returned by a prize entry
type PrizeEntryResult struct {
	Entry         *PrizeEntry `json:"entry"`
	PityTriggered bool        `json:"pity_triggered"`
	// Replayed is true when the entry was found by its request id instead of being created
	Replayed bool `json:"replayed"`
}

// PityStatus is the display view of a pity counter
type PityStatus struct {
	CurrentCount int `json:"current_count"`
	Threshold    int `json:"threshold"`
}

// PrizeWithPity pairs a prize with the user's pity progress
type PrizeWithPity struct {
	Prize
	PityCount      int     `json:"pity_count"`
	PityPercentage float64 `json:"pity_percentage"`
}
