package testhelpers

import (
	"context"
	"time"

	"rewards/domain/entities"
	"rewards/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID string) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, userID string) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByReferralCode(ctx context.Context, code string) (*entities.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetBalance(ctx context.Context, userID string, currency entities.Currency) (int64, error) {
	args := m.Called(ctx, userID, currency)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) SetBalance(ctx context.Context, userID string, currency entities.Currency, value int64) error {
	args := m.Called(ctx, userID, currency, value)
	return args.Error(0)
}

func (m *MockAccountRepository) SetReferredBy(ctx context.Context, userID, referrerID string) error {
	args := m.Called(ctx, userID, referrerID)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *entities.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) History(ctx context.Context, userID string, currency *entities.Currency, limit, offset int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, currency, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetByReference(ctx context.Context, userID, referenceID string) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

// MockMissionRepository is a mock implementation of MissionRepository
type MockMissionRepository struct {
	mock.Mock
}

func (m *MockMissionRepository) GetByID(ctx context.Context, id string) (*entities.Mission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Mission), args.Error(1)
}

func (m *MockMissionRepository) ListActive(ctx context.Context) ([]*entities.Mission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Mission), args.Error(1)
}

func (m *MockMissionRepository) Upsert(ctx context.Context, mission *entities.Mission) error {
	args := m.Called(ctx, mission)
	return args.Error(0)
}

// MockMissionCompletionRepository is a mock implementation of MissionCompletionRepository
type MockMissionCompletionRepository struct {
	mock.Mock
}

func (m *MockMissionCompletionRepository) Create(ctx context.Context, completion *entities.MissionCompletion) error {
	args := m.Called(ctx, completion)
	return args.Error(0)
}

func (m *MockMissionCompletionRepository) CountSince(ctx context.Context, userID, missionID string, since time.Time) (int, error) {
	args := m.Called(ctx, userID, missionID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockMissionCompletionRepository) CountByMissionSince(ctx context.Context, userID string, since time.Time) (map[string]int, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// MockPrizeRepository is a mock implementation of PrizeRepository
type MockPrizeRepository struct {
	mock.Mock
}

func (m *MockPrizeRepository) GetByID(ctx context.Context, id string) (*entities.Prize, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Prize), args.Error(1)
}

func (m *MockPrizeRepository) ListActive(ctx context.Context) ([]*entities.Prize, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Prize), args.Error(1)
}

func (m *MockPrizeRepository) Upsert(ctx context.Context, prize *entities.Prize) error {
	args := m.Called(ctx, prize)
	return args.Error(0)
}

// MockPrizeEntryRepository is a mock implementation of PrizeEntryRepository
type MockPrizeEntryRepository struct {
	mock.Mock
}

func (m *MockPrizeEntryRepository) Create(ctx context.Context, entry *entities.PrizeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockPrizeEntryRepository) GetByRequestID(ctx context.Context, userID, requestID string) (*entities.PrizeEntry, error) {
	args := m.Called(ctx, userID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PrizeEntry), args.Error(1)
}

func (m *MockPrizeEntryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.PrizeEntry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PrizeEntry), args.Error(1)
}

// MockPityCounterRepository is a mock implementation of PityCounterRepository
type MockPityCounterRepository struct {
	mock.Mock
}

func (m *MockPityCounterRepository) Get(ctx context.Context, userID, prizeID string) (*entities.PrizePityCounter, error) {
	args := m.Called(ctx, userID, prizeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PrizePityCounter), args.Error(1)
}

func (m *MockPityCounterRepository) GetOrCreateForUpdate(ctx context.Context, userID, prizeID string) (*entities.PrizePityCounter, error) {
	args := m.Called(ctx, userID, prizeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PrizePityCounter), args.Error(1)
}

func (m *MockPityCounterRepository) Save(ctx context.Context, counter *entities.PrizePityCounter) error {
	args := m.Called(ctx, counter)
	return args.Error(0)
}

func (m *MockPityCounterRepository) ListByUser(ctx context.Context, userID string) ([]*entities.PrizePityCounter, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PrizePityCounter), args.Error(1)
}

// MockRewardProductRepository is a mock implementation of RewardProductRepository
type MockRewardProductRepository struct {
	mock.Mock
}

func (m *MockRewardProductRepository) GetForUpdate(ctx context.Context, id string) (*entities.RewardProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RewardProduct), args.Error(1)
}

func (m *MockRewardProductRepository) ListActive(ctx context.Context) ([]*entities.RewardProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RewardProduct), args.Error(1)
}

func (m *MockRewardProductRepository) Upsert(ctx context.Context, product *entities.RewardProduct) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRewardProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, request *entities.WithdrawalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetForUpdate(ctx context.Context, id string) (*entities.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.WithdrawalRequest, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) UpdateStatus(ctx context.Context, request *entities.WithdrawalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockTransactionalEventPublisher is a mock implementation of TransactionalEventPublisher for testing
type MockTransactionalEventPublisher struct {
	mock.Mock
}

func (m *MockTransactionalEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockTransactionalEventPublisher) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransactionalEventPublisher) Discard() {
	m.Called()
}
