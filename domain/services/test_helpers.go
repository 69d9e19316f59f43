package services

import (
	"testing"
	"time"

	"rewards/domain/entities"
	"rewards/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestUserID     = "user-1"
	TestReferrerID = "user-2"
	TestMissionID  = "mission-1"
	TestPrizeID    = "prize-1"
	TestProductID  = "product-1"
)

// TestNow is the fixed clock reading used by service tests
var TestNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return TestNow
}

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	AccountRepo    *testhelpers.MockAccountRepository
	LedgerRepo     *testhelpers.MockLedgerRepository
	MissionRepo    *testhelpers.MockMissionRepository
	CompletionRepo *testhelpers.MockMissionCompletionRepository
	PrizeRepo      *testhelpers.MockPrizeRepository
	EntryRepo      *testhelpers.MockPrizeEntryRepository
	PityRepo       *testhelpers.MockPityCounterRepository
	ProductRepo    *testhelpers.MockRewardProductRepository
	WithdrawalRepo *testhelpers.MockWithdrawalRepository
	Currency       *testhelpers.MockCurrencyService
	EventPublisher *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		AccountRepo:    &testhelpers.MockAccountRepository{},
		LedgerRepo:     &testhelpers.MockLedgerRepository{},
		MissionRepo:    &testhelpers.MockMissionRepository{},
		CompletionRepo: &testhelpers.MockMissionCompletionRepository{},
		PrizeRepo:      &testhelpers.MockPrizeRepository{},
		EntryRepo:      &testhelpers.MockPrizeEntryRepository{},
		PityRepo:       &testhelpers.MockPityCounterRepository{},
		ProductRepo:    &testhelpers.MockRewardProductRepository{},
		WithdrawalRepo: &testhelpers.MockWithdrawalRepository{},
		Currency:       &testhelpers.MockCurrencyService{},
		EventPublisher: &testhelpers.MockEventPublisher{},
	}
}

// AllowEvents accepts any published event
func (m *TestMocks) AllowEvents() {
	m.EventPublisher.On("Publish", mock.Anything).Return(nil).Maybe()
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.AccountRepo.AssertExpectations(t)
	m.LedgerRepo.AssertExpectations(t)
	m.MissionRepo.AssertExpectations(t)
	m.CompletionRepo.AssertExpectations(t)
	m.PrizeRepo.AssertExpectations(t)
	m.EntryRepo.AssertExpectations(t)
	m.PityRepo.AssertExpectations(t)
	m.ProductRepo.AssertExpectations(t)
	m.WithdrawalRepo.AssertExpectations(t)
	m.Currency.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// newTestAccount returns an account with the given balances
func newTestAccount(userID string, points, tickets int64) *entities.Account {
	return &entities.Account{
		UserID:       userID,
		Username:     "tester",
		Points:       points,
		Tickets:      tickets,
		ReferralCode: "ABCD1234",
		CreatedAt:    TestNow,
		UpdatedAt:    TestNow,
	}
}

func intPtr(v int) *int {
	return &v
}
