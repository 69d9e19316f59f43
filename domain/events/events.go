package events

import "rewards/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChanged      EventType = "balance_changed"
	EventTypeAccountOpened       EventType = "account_opened"
	EventTypeMissionCompleted    EventType = "mission_completed"
	EventTypePrizeEntered        EventType = "prize_entered"
	EventTypePityTriggered       EventType = "pity_triggered"
	EventTypeWithdrawalRequested EventType = "withdrawal_requested"
	EventTypeWithdrawalProcessed EventType = "withdrawal_processed"
)

// AllEventTypes lists every event type the service publishes
var AllEventTypes = []EventType{
	EventTypeBalanceChanged,
	EventTypeAccountOpened,
	EventTypeMissionCompleted,
	EventTypePrizeEntered,
	EventTypePityTriggered,
	EventTypeWithdrawalRequested,
	EventTypeWithdrawalProcessed,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangedEvent is emitted for every ledger entry
type BalanceChangedEvent struct {
	UserID          string                   `json:"user_id"`
	Currency        entities.Currency        `json:"currency"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	Amount          int64                    `json:"amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	LedgerEntryID   string                   `json:"ledger_entry_id"`
}

func (e BalanceChangedEvent) Type() EventType {
	return EventTypeBalanceChanged
}

// AccountOpenedEvent represents a new account
type AccountOpenedEvent struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	ReferralCode string `json:"referral_code"`
}

func (e AccountOpenedEvent) Type() EventType {
	return EventTypeAccountOpened
}

// MissionCompletedEvent represents a rewarded mission completion
type MissionCompletedEvent struct {
	UserID         string            `json:"user_id"`
	MissionID      string            `json:"mission_id"`
	CompletionID   string            `json:"completion_id"`
	RewardAmount   int64             `json:"reward_amount"`
	RewardCurrency entities.Currency `json:"reward_currency"`
}

func (e MissionCompletedEvent) Type() EventType {
	return EventTypeMissionCompleted
}

// PrizeEnteredEvent represents a ticket-funded prize entry
type PrizeEnteredEvent struct {
	UserID      string `json:"user_id"`
	PrizeID     string `json:"prize_id"`
	EntryID     string `json:"entry_id"`
	TicketsUsed int64  `json:"tickets_used"`
	PityCount   int    `json:"pity_count"`
}

func (e PrizeEnteredEvent) Type() EventType {
	return EventTypePrizeEntered
}

// PityTriggeredEvent represents a guaranteed reward payout
type PityTriggeredEvent struct {
	UserID         string            `json:"user_id"`
	PrizeID        string            `json:"prize_id"`
	EntryID        string            `json:"entry_id"`
	RewardAmount   int64             `json:"reward_amount"`
	RewardCurrency entities.Currency `json:"reward_currency"`
}

func (e PityTriggeredEvent) Type() EventType {
	return EventTypePityTriggered
}

// WithdrawalRequestedEvent represents a new point redemption
type WithdrawalRequestedEvent struct {
	WithdrawalID string `json:"withdrawal_id"`
	UserID       string `json:"user_id"`
	ProductID    string `json:"product_id"`
	PointsUsed   int64  `json:"points_used"`
}

func (e WithdrawalRequestedEvent) Type() EventType {
	return EventTypeWithdrawalRequested
}

// WithdrawalProcessedEvent represents a status change of a redemption
type WithdrawalProcessedEvent struct {
	WithdrawalID string                    `json:"withdrawal_id"`
	UserID       string                    `json:"user_id"`
	OldStatus    entities.WithdrawalStatus `json:"old_status"`
	NewStatus    entities.WithdrawalStatus `json:"new_status"`
}

func (e WithdrawalProcessedEvent) Type() EventType {
	return EventTypeWithdrawalProcessed
}
