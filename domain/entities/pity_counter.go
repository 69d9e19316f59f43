package entities

import "time"

// PrizePityCounter counts entries a user made into a prize since the last guaranteed reward
type PrizePityCounter struct {
	UserID       string     `db:"user_id"`
	PrizeID      string     `db:"prize_id"`
	CurrentCount int        `db:"current_count"`
	LastResetAt  *time.Time `db:"last_reset_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// Increment counts one more entry
func (c *PrizePityCounter) Increment(now time.Time) {
	c.CurrentCount++
	c.UpdatedAt = now
}

// ReachedThreshold reports whether the counter is due for the guaranteed reward.
// A threshold lowered below an existing count still triggers.
func (c *PrizePityCounter) ReachedThreshold(threshold int) bool {
	return c.CurrentCount >= threshold
}

// Reset zeroes the counter after the guaranteed reward has been paid
func (c *PrizePityCounter) Reset(now time.Time) {
	c.CurrentCount = 0
	c.LastResetAt = &now
	c.UpdatedAt = now
}
