package services

import (
	"context"
	"testing"

	"rewards/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountService_OpenAccount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		userID     string
		settings   AccountSettings
		setupMocks func(m *TestMocks)
		wantErr    error
		wantPoints int64
	}{
		{
			name:   "opens with zero balances",
			userID: TestUserID,
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetByUserID", mock.Anything, TestUserID).Return(nil, nil)
				m.AccountRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Account) bool {
					return a.Points == 0 && a.Tickets == 0 && len(a.ReferralCode) == 8
				})).Return(nil)
				m.EventPublisher.On("Publish", mock.AnythingOfType("events.AccountOpenedEvent")).Return(nil)
			},
		},
		{
			name:     "signup bonus goes through the ledger",
			userID:   TestUserID,
			settings: AccountSettings{SignupBonusPoints: 100},
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetByUserID", mock.Anything, TestUserID).Return(nil, nil)
				m.AccountRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.Currency.On("Credit", mock.Anything, TestUserID, entities.CurrencyPoints, int64(100),
					entities.TransactionTypeAdminAdjustment, "signup bonus", "").
					Return(&entities.LedgerEntry{Amount: 100, BalanceAfter: 100}, nil)
				m.AllowEvents()
			},
			wantPoints: 100,
		},
		{
			name:   "existing account",
			userID: TestUserID,
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetByUserID", mock.Anything, TestUserID).Return(newTestAccount(TestUserID, 0, 0), nil)
			},
			wantErr: entities.ErrAlreadyExists,
		},
		{
			name:       "blank user id",
			userID:     "  ",
			setupMocks: func(m *TestMocks) {},
			wantErr:    entities.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewTestMocks()
			tt.setupMocks(m)
			service := NewAccountService(m.AccountRepo, m.Currency, m.EventPublisher, tt.settings, fixedClock)

			account, err := service.OpenAccount(context.Background(), tt.userID, "tester")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPoints, account.Points)
			assert.Equal(t, int64(0), account.Tickets)
			m.AssertAllExpectations(t)
		})
	}
}

func TestAccountService_ApplyReferral(t *testing.T) {
	t.Parallel()

	settings := AccountSettings{ReferralBonusPoints: 50, ReferralBonusTickets: 1}

	tests := []struct {
		name       string
		code       string
		setupMocks func(m *TestMocks)
		wantErr    error
	}{
		{
			name: "pays both sides",
			code: "ref00001",
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetForUpdate", mock.Anything, TestUserID).Return(newTestAccount(TestUserID, 0, 0), nil)
				referrer := newTestAccount(TestReferrerID, 0, 0)
				referrer.ReferralCode = "REF00001"
				m.AccountRepo.On("GetByReferralCode", mock.Anything, "REF00001").Return(referrer, nil)
				m.AccountRepo.On("SetReferredBy", mock.Anything, TestUserID, TestReferrerID).Return(nil)
				for _, c := range []struct {
					currency entities.Currency
					amount   int64
				}{{entities.CurrencyPoints, 50}, {entities.CurrencyTickets, 1}} {
					m.Currency.On("Credit", mock.Anything, TestUserID, c.currency, c.amount,
						entities.TransactionTypeReferral, "referral bonus", TestReferrerID).Return(&entities.LedgerEntry{}, nil).Once()
					m.Currency.On("Credit", mock.Anything, TestReferrerID, c.currency, c.amount,
						entities.TransactionTypeReferral, "referral bonus", TestUserID).Return(&entities.LedgerEntry{}, nil).Once()
				}
				updated := newTestAccount(TestUserID, 50, 1)
				referrerID := TestReferrerID
				updated.ReferredBy = &referrerID
				m.AccountRepo.On("GetByUserID", mock.Anything, TestUserID).Return(updated, nil)
			},
		},
		{
			name: "already referred",
			code: "REF00001",
			setupMocks: func(m *TestMocks) {
				account := newTestAccount(TestUserID, 0, 0)
				referrerID := TestReferrerID
				account.ReferredBy = &referrerID
				m.AccountRepo.On("GetForUpdate", mock.Anything, TestUserID).Return(account, nil)
			},
			wantErr: entities.ErrReferralNotAllowed,
		},
		{
			name: "own code",
			code: "ABCD1234",
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetForUpdate", mock.Anything, TestUserID).Return(newTestAccount(TestUserID, 0, 0), nil)
				m.AccountRepo.On("GetByReferralCode", mock.Anything, "ABCD1234").Return(newTestAccount(TestUserID, 0, 0), nil)
			},
			wantErr: entities.ErrReferralNotAllowed,
		},
		{
			name: "unknown code",
			code: "NOPE0000",
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetForUpdate", mock.Anything, TestUserID).Return(newTestAccount(TestUserID, 0, 0), nil)
				m.AccountRepo.On("GetByReferralCode", mock.Anything, "NOPE0000").Return(nil, nil)
			},
			wantErr: entities.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewTestMocks()
			tt.setupMocks(m)
			service := NewAccountService(m.AccountRepo, m.Currency, m.EventPublisher, settings, fixedClock)

			account, err := service.ApplyReferral(context.Background(), TestUserID, tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				m.AccountRepo.AssertNotCalled(t, "SetReferredBy", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.True(t, account.HasReferrer())
			m.AssertAllExpectations(t)
		})
	}
}

func TestNewReferralCode(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewReferralCode()
		assert.Len(t, code, 8)
		assert.Regexp(t, `^[0-9A-F]{8}$`, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90)
}
