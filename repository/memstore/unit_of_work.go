package memstore

import (
	"context"
	"fmt"

	"rewards/application"
	"rewards/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// UnitOfWorkFactory creates units of work over a Store
type UnitOfWorkFactory struct {
	store *Store
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory for the store
func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

// CreateWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *UnitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		store:                  f.store,
		transactionalPublisher: transactionalPublisher,
	}
}

type unitOfWork struct {
	store                  *Store
	ctx                    context.Context
	snapshot               *data
	active                 bool
	transactionalPublisher interfaces.TransactionalEventPublisher
}

// Begin waits for exclusive access to the store
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}

	select {
	case u.store.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("failed to begin transaction: %w", ctx.Err())
	}

	u.ctx = ctx
	u.active = true
	u.snapshot = u.store.data.clone()
	return nil
}

// Commit keeps the changes unless a commit failure was injected
func (u *unitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.store.takeCommitFailure(); err != nil {
		u.release(true)
		if u.transactionalPublisher != nil {
			u.transactionalPublisher.Discard()
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.release(false)
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
			log.WithError(err).Error("Failed to publish events after commit")
		}
	}
	return nil
}

// Rollback restores the store to its state at Begin
func (u *unitOfWork) Rollback() error {
	if !u.active {
		return nil
	}

	u.release(true)
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}
	return nil
}

func (u *unitOfWork) release(restore bool) {
	if restore {
		u.store.data = u.snapshot
	}
	u.snapshot = nil
	u.active = false
	<-u.store.sem
}

func (u *unitOfWork) mustBeActive() {
	if !u.active {
		panic("unit of work not started - call Begin() first")
	}
}

func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	u.mustBeActive()
	return &accountRepository{store: u.store}
}

func (u *unitOfWork) LedgerRepository() interfaces.LedgerRepository {
	u.mustBeActive()
	return &ledgerRepository{store: u.store}
}

func (u *unitOfWork) MissionRepository() interfaces.MissionRepository {
	u.mustBeActive()
	return &missionRepository{store: u.store}
}

func (u *unitOfWork) MissionCompletionRepository() interfaces.MissionCompletionRepository {
	u.mustBeActive()
	return &missionCompletionRepository{store: u.store}
}

func (u *unitOfWork) PrizeRepository() interfaces.PrizeRepository {
	u.mustBeActive()
	return &prizeRepository{store: u.store}
}

func (u *unitOfWork) PrizeEntryRepository() interfaces.PrizeEntryRepository {
	u.mustBeActive()
	return &prizeEntryRepository{store: u.store}
}

func (u *unitOfWork) PityCounterRepository() interfaces.PityCounterRepository {
	u.mustBeActive()
	return &pityCounterRepository{store: u.store}
}

func (u *unitOfWork) RewardProductRepository() interfaces.RewardProductRepository {
	u.mustBeActive()
	return &rewardProductRepository{store: u.store}
}

func (u *unitOfWork) WithdrawalRepository() interfaces.WithdrawalRepository {
	u.mustBeActive()
	return &withdrawalRepository{store: u.store}
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("transactional publisher not configured")
	}
	return u.transactionalPublisher
}
