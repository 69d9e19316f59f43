package services

import (
	"context"
	"fmt"
	"math"

	"rewards/domain/entities"
	"rewards/domain/interfaces"
	"rewards/domain/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultHistoryLimit is used when a caller asks for a non-positive page size
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps a single history page
	MaxHistoryLimit = 200
)

// currencyService applies balance mutations together with their ledger entries
type currencyService struct {
	accountRepo    interfaces.AccountRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
}

// NewCurrencyService creates a new currency service
func NewCurrencyService(
	accountRepo interfaces.AccountRepository,
	ledgerRepo interfaces.LedgerRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.CurrencyService {
	return &currencyService{
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
	}
}

// GetBalance returns both balances of a user
func (s *currencyService) GetBalance(ctx context.Context, userID string) (*entities.Balance, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}

	balance := account.Balance()
	return &balance, nil
}

// Credit adds a positive amount to a balance
func (s *currencyService) Credit(ctx context.Context, userID string, currency entities.Currency, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d: %w", amount, entities.ErrInvalidAmount)
	}
	return s.apply(ctx, userID, currency, amount, txType, description, referenceID)
}

// Debit removes a positive amount from a balance
func (s *currencyService) Debit(ctx context.Context, userID string, currency entities.Currency, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d: %w", amount, entities.ErrInvalidAmount)
	}
	return s.apply(ctx, userID, currency, -amount, txType, description, referenceID)
}

func (s *currencyService) AddPoints(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	return s.Credit(ctx, userID, entities.CurrencyPoints, amount, txType, description, referenceID)
}

func (s *currencyService) DeductPoints(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	return s.Debit(ctx, userID, entities.CurrencyPoints, amount, txType, description, referenceID)
}

func (s *currencyService) AddTickets(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	return s.Credit(ctx, userID, entities.CurrencyTickets, amount, txType, description, referenceID)
}

func (s *currencyService) DeductTickets(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	return s.Debit(ctx, userID, entities.CurrencyTickets, amount, txType, description, referenceID)
}

// Adjust applies a signed admin delta. Negative deltas follow the debit rule.
func (s *currencyService) Adjust(ctx context.Context, userID string, currency entities.Currency, delta int64, description string) (*entities.LedgerEntry, error) {
	if delta == 0 {
		return nil, fmt.Errorf("adjustment cannot be zero: %w", entities.ErrInvalidAmount)
	}
	if delta > 0 {
		return s.Credit(ctx, userID, currency, delta, entities.TransactionTypeAdminAdjustment, description, "")
	}
	return s.Debit(ctx, userID, currency, -delta, entities.TransactionTypeAdminAdjustment, description, "")
}

// History returns ledger entries newest first
func (s *currencyService) History(ctx context.Context, userID string, currency *entities.Currency, limit, offset int) ([]*entities.LedgerEntry, error) {
	if currency != nil && !currency.IsValid() {
		return nil, fmt.Errorf("history filter %q: %w", *currency, entities.ErrInvalidCurrency)
	}

	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}

	limit, offset = normalizePage(limit, offset)
	entries, err := s.ledgerRepo.History(ctx, userID, currency, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger history: %w", err)
	}
	return entries, nil
}

// apply performs the locked read-modify-write of one balance and appends its ledger entry
func (s *currencyService) apply(ctx context.Context, userID string, currency entities.Currency, delta int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	if !currency.IsValid() {
		return nil, fmt.Errorf("currency %q: %w", currency, entities.ErrInvalidCurrency)
	}

	account, err := s.accountRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}

	current := account.BalanceOf(currency)
	if delta > 0 && delta > math.MaxInt64-current {
		return nil, fmt.Errorf("%s balance %d cannot take %d more: %w", currency, current, delta, entities.ErrInvalidAmount)
	}
	newBalance := current + delta
	if newBalance < 0 {
		return nil, fmt.Errorf("%s balance %d cannot cover %d: %w", currency, current, -delta, entities.ErrInsufficientFunds)
	}

	if err := s.accountRepo.SetBalance(ctx, userID, currency, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	entry := &entities.LedgerEntry{
		ID:              uuid.NewString(),
		UserID:          userID,
		Currency:        currency,
		Amount:          delta,
		BalanceAfter:    newBalance,
		TransactionType: txType,
		Description:     entities.StringPtr(description),
		ReferenceID:     entities.StringPtr(referenceID),
	}
	if err := utils.RecordLedgerEntry(ctx, s.ledgerRepo, s.eventPublisher, entry); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":          userID,
		"currency":        currency,
		"amount":          delta,
		"balanceAfter":    newBalance,
		"transactionType": txType,
	}).Debug("Applied balance change")

	return entry, nil
}

// normalizePage applies default and maximum page sizes
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
