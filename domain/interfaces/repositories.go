package interfaces

import (
	"context"
	"time"

	"rewards/domain/entities"
	"rewards/domain/events"
)

// AccountRepository is the balance store
type AccountRepository interface {
	// GetByUserID retrieves an account without locking it. Returns nil when not found.
	GetByUserID(ctx context.Context, userID string) (*entities.Account, error)

	// GetForUpdate retrieves an account and locks it until the unit of work ends. Returns nil when not found.
	GetForUpdate(ctx context.Context, userID string) (*entities.Account, error)

	// GetByReferralCode retrieves the account owning a referral code. Returns nil when not found.
	GetByReferralCode(ctx context.Context, code string) (*entities.Account, error)

	// Create inserts a new account with zero balances
	Create(ctx context.Context, account *entities.Account) error

	// GetBalance returns a single balance, ErrNotFound for an unknown user
	GetBalance(ctx context.Context, userID string, currency entities.Currency) (int64, error)

	// SetBalance replaces a single balance. Callers guarantee value >= 0.
	SetBalance(ctx context.Context, userID string, currency entities.Currency, value int64) error

	// SetReferredBy records who referred the user
	SetReferredBy(ctx context.Context, userID, referrerID string) error
}

// LedgerRepository is the append-only transaction ledger
type LedgerRepository interface {
	// Append stores a new entry, assigning its ID (when empty), Seq and CreatedAt
	Append(ctx context.Context, entry *entities.LedgerEntry) error

	// History returns entries for a user newest first, optionally filtered by currency
	History(ctx context.Context, userID string, currency *entities.Currency, limit, offset int) ([]*entities.LedgerEntry, error)

	// GetByReference returns every entry of a user pointing at referenceID, oldest first
	GetByReference(ctx context.Context, userID, referenceID string) ([]*entities.LedgerEntry, error)
}

// MissionRepository provides access to mission reference data
type MissionRepository interface {
	// GetByID returns nil when the mission does not exist
	GetByID(ctx context.Context, id string) (*entities.Mission, error)
	ListActive(ctx context.Context) ([]*entities.Mission, error)
	Upsert(ctx context.Context, mission *entities.Mission) error
}

// MissionCompletionRepository records mission completions
type MissionCompletionRepository interface {
	Create(ctx context.Context, completion *entities.MissionCompletion) error

	// CountSince counts completions of one mission by a user at or after since
	CountSince(ctx context.Context, userID, missionID string, since time.Time) (int, error)

	// CountByMissionSince counts completions by a user at or after since, keyed by mission
	CountByMissionSince(ctx context.Context, userID string, since time.Time) (map[string]int, error)
}

// PrizeRepository provides access to prize reference data
type PrizeRepository interface {
	// GetByID returns nil when the prize does not exist
	GetByID(ctx context.Context, id string) (*entities.Prize, error)
	ListActive(ctx context.Context) ([]*entities.Prize, error)
	Upsert(ctx context.Context, prize *entities.Prize) error
}

// PrizeEntryRepository records prize entries
type PrizeEntryRepository interface {
	// Create inserts an entry. Returns ErrAlreadyExists when the request id was already used by the user.
	Create(ctx context.Context, entry *entities.PrizeEntry) error

	// GetByRequestID returns nil when the user never used the request id
	GetByRequestID(ctx context.Context, userID, requestID string) (*entities.PrizeEntry, error)

	// ListByUser returns the user's entries newest first
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.PrizeEntry, error)
}

// PityCounterRepository stores per-(user, prize) pity counters
type PityCounterRepository interface {
	// Get reads a counter without locking. Returns nil when none exists yet.
	Get(ctx context.Context, userID, prizeID string) (*entities.PrizePityCounter, error)

	// GetOrCreateForUpdate returns the counter, creating it at zero if needed, locked until the unit of work ends
	GetOrCreateForUpdate(ctx context.Context, userID, prizeID string) (*entities.PrizePityCounter, error)

	// Save persists the counter's count and reset time
	Save(ctx context.Context, counter *entities.PrizePityCounter) error

	// ListByUser returns every counter the user has
	ListByUser(ctx context.Context, userID string) ([]*entities.PrizePityCounter, error)
}

// RewardProductRepository provides access to redeemable products
type RewardProductRepository interface {
	// GetForUpdate returns the product locked until the unit of work ends, nil when not found
	GetForUpdate(ctx context.Context, id string) (*entities.RewardProduct, error)
	ListActive(ctx context.Context) ([]*entities.RewardProduct, error)
	Upsert(ctx context.Context, product *entities.RewardProduct) error

	// UpdateStock replaces the stock of a finite product
	UpdateStock(ctx context.Context, id string, stock int) error
}

// WithdrawalRepository stores point redemption requests
type WithdrawalRepository interface {
	Create(ctx context.Context, request *entities.WithdrawalRequest) error

	// GetForUpdate returns the request locked until the unit of work ends, nil when not found
	GetForUpdate(ctx context.Context, id string) (*entities.WithdrawalRequest, error)

	// ListByUser returns the user's requests newest first
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.WithdrawalRequest, error)

	// UpdateStatus persists status, admin notes and processed time
	UpdateStatus(ctx context.Context, request *entities.WithdrawalRequest) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding unit of work commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes buffered events. Called after commit.
	Flush(ctx context.Context) error

	// Discard drops buffered events. Called on rollback.
	Discard()
}
