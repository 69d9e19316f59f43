package repository

import (
	"context"
	"fmt"

	"rewards/application"
	"rewards/database"
	"rewards/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const notStartedPanic = "unit of work not started - call Begin() first"

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	accountRepo            interfaces.AccountRepository
	ledgerRepo             interfaces.LedgerRepository
	missionRepo            interfaces.MissionRepository
	completionRepo         interfaces.MissionCompletionRepository
	prizeRepo              interfaces.PrizeRepository
	prizeEntryRepo         interfaces.PrizeEntryRepository
	pityCounterRepo        interfaces.PityCounterRepository
	rewardProductRepo      interfaces.RewardProductRepository
	withdrawalRepo         interfaces.WithdrawalRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db: db,
	}
}

// UnitOfWorkFactory creates Postgres-backed units of work
type UnitOfWorkFactory struct {
	db *database.DB
}

// CreateWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *UnitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", database.StorageError(err))
	}

	u.tx = tx
	u.ctx = ctx

	u.accountRepo = NewAccountRepositoryScoped(tx)
	u.ledgerRepo = NewLedgerRepositoryScoped(tx)
	u.missionRepo = NewMissionRepositoryScoped(tx)
	u.completionRepo = NewMissionCompletionRepositoryScoped(tx)
	u.prizeRepo = NewPrizeRepositoryScoped(tx)
	u.prizeEntryRepo = NewPrizeEntryRepositoryScoped(tx)
	u.pityCounterRepo = NewPityCounterRepositoryScoped(tx)
	u.rewardProductRepo = NewRewardProductRepositoryScoped(tx)
	u.withdrawalRepo = NewWithdrawalRepositoryScoped(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	u.tx = nil
	if err != nil {
		if u.transactionalPublisher != nil {
			u.transactionalPublisher.Discard()
		}
		return fmt.Errorf("failed to commit transaction: %w", database.StorageError(err))
	}

	// Events only leave the process once the data they describe is durable
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
			log.WithError(err).Error("Failed to publish events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	if u.accountRepo == nil {
		panic(notStartedPanic)
	}
	return u.accountRepo
}

// LedgerRepository returns the ledger repository for this unit of work
func (u *unitOfWork) LedgerRepository() interfaces.LedgerRepository {
	if u.ledgerRepo == nil {
		panic(notStartedPanic)
	}
	return u.ledgerRepo
}

func (u *unitOfWork) MissionRepository() interfaces.MissionRepository {
	if u.missionRepo == nil {
		panic(notStartedPanic)
	}
	return u.missionRepo
}

func (u *unitOfWork) MissionCompletionRepository() interfaces.MissionCompletionRepository {
	if u.completionRepo == nil {
		panic(notStartedPanic)
	}
	return u.completionRepo
}

func (u *unitOfWork) PrizeRepository() interfaces.PrizeRepository {
	if u.prizeRepo == nil {
		panic(notStartedPanic)
	}
	return u.prizeRepo
}

func (u *unitOfWork) PrizeEntryRepository() interfaces.PrizeEntryRepository {
	if u.prizeEntryRepo == nil {
		panic(notStartedPanic)
	}
	return u.prizeEntryRepo
}

func (u *unitOfWork) PityCounterRepository() interfaces.PityCounterRepository {
	if u.pityCounterRepo == nil {
		panic(notStartedPanic)
	}
	return u.pityCounterRepo
}

func (u *unitOfWork) RewardProductRepository() interfaces.RewardProductRepository {
	if u.rewardProductRepo == nil {
		panic(notStartedPanic)
	}
	return u.rewardProductRepo
}

func (u *unitOfWork) WithdrawalRepository() interfaces.WithdrawalRepository {
	if u.withdrawalRepo == nil {
		panic(notStartedPanic)
	}
	return u.withdrawalRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("transactional publisher not configured")
	}
	return u.transactionalPublisher
}
