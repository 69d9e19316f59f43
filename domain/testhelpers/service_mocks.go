package testhelpers

import (
	"context"

	"rewards/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockCurrencyService is a mock implementation of CurrencyService
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetBalance(ctx context.Context, userID string) (*entities.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balance), args.Error(1)
}

func (m *MockCurrencyService) Credit(ctx context.Context, userID string, currency entities.Currency, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, currency, amount, txType, description, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

func (m *MockCurrencyService) Debit(ctx context.Context, userID string, currency entities.Currency, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, currency, amount, txType, description, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

func (m *MockCurrencyService) AddPoints(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	return m.Credit(ctx, userID, entities.CurrencyPoints, amount, txType, description, referenceID)
}

func (m *MockCurrencyService) DeductPoints(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	return m.Debit(ctx, userID, entities.CurrencyPoints, amount, txType, description, referenceID)
}

func (m *MockCurrencyService) AddTickets(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	return m.Credit(ctx, userID, entities.CurrencyTickets, amount, txType, description, referenceID)
}

func (m *MockCurrencyService) DeductTickets(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error) {
	return m.Debit(ctx, userID, entities.CurrencyTickets, amount, txType, description, referenceID)
}

func (m *MockCurrencyService) Adjust(ctx context.Context, userID string, currency entities.Currency, delta int64, description string) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, currency, delta, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

func (m *MockCurrencyService) History(ctx context.Context, userID string, currency *entities.Currency, limit, offset int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, currency, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}
