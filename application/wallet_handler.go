package application

import (
	"context"

	"rewards/domain/entities"

	log "github.com/sirupsen/logrus"
)

// WalletHandler exposes balances, ledger history and admin adjustments
type WalletHandler interface {
	GetBalance(ctx context.Context, userID string) (*entities.Balance, error)
	GetTransactionHistory(ctx context.Context, userID string, currency *entities.Currency, limit, offset int) ([]*entities.LedgerEntry, error)
	AdjustBalance(ctx context.Context, userID string, currency entities.Currency, delta int64, note string) (*entities.LedgerEntry, error)
}

type walletHandler struct {
	*base
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(deps Dependencies) WalletHandler {
	return &walletHandler{base: newBase(deps)}
}

// GetBalance is a display read. It is served from the cache when possible.
func (h *walletHandler) GetBalance(ctx context.Context, userID string) (*entities.Balance, error) {
	cacheable := false
	var generation int64
	if h.balanceCache != nil {
		if balance, ok := h.balanceCache.Get(ctx, userID); ok {
			return balance, nil
		}
		// The generation is read before storage so a write committed in between wins
		var err error
		generation, err = h.balanceCache.Generation(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("userID", userID).Warn("Balance cache unavailable, not caching")
		}
		cacheable = err == nil
	}

	balance, err := withUnitOfWork(ctx, h.base, "get_balance", func(uow UnitOfWork) (*entities.Balance, error) {
		return h.currencyService(uow).GetBalance(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	if cacheable {
		h.balanceCache.SetIfGeneration(ctx, userID, generation, balance)
	}
	return balance, nil
}

// GetTransactionHistory returns ledger entries newest first
func (h *walletHandler) GetTransactionHistory(ctx context.Context, userID string, currency *entities.Currency, limit, offset int) ([]*entities.LedgerEntry, error) {
	return withUnitOfWork(ctx, h.base, "get_transaction_history", func(uow UnitOfWork) ([]*entities.LedgerEntry, error) {
		if _, err := h.currencyService(uow).GetBalance(ctx, userID); err != nil {
			return nil, err
		}
		return h.currencyService(uow).History(ctx, userID, currency, limit, offset)
	})
}

// AdjustBalance applies a signed admin correction to one currency
func (h *walletHandler) AdjustBalance(ctx context.Context, userID string, currency entities.Currency, delta int64, note string) (*entities.LedgerEntry, error) {
	entry, err := withUnitOfWork(ctx, h.base, "adjust_balance", func(uow UnitOfWork) (*entities.LedgerEntry, error) {
		return h.currencyService(uow).Adjust(ctx, userID, currency, delta, note)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":       userID,
		"currency":     currency,
		"delta":        delta,
		"balanceAfter": entry.BalanceAfter,
	}).Info("Balance adjusted")
	return entry, nil
}
