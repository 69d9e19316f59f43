package application

import (
	"context"

	"rewards/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and discards buffered events
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	LedgerRepository() interfaces.LedgerRepository
	MissionRepository() interfaces.MissionRepository
	MissionCompletionRepository() interfaces.MissionCompletionRepository
	PrizeRepository() interfaces.PrizeRepository
	PrizeEntryRepository() interfaces.PrizeEntryRepository
	PityCounterRepository() interfaces.PityCounterRepository
	RewardProductRepository() interfaces.RewardProductRepository
	WithdrawalRepository() interfaces.WithdrawalRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
