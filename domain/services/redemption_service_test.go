package services

import (
	"context"
	"encoding/json"
	"testing"

	"rewards/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProduct(stock *int) *entities.RewardProduct {
	return &entities.RewardProduct{
		ID:             TestProductID,
		Name:           "Gift card",
		PointsRequired: 1000,
		Stock:          stock,
		IsActive:       true,
	}
}

func TestRedemptionService_RequestWithdrawal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setupMocks func(m *TestMocks)
		wantErr    error
	}{
		{
			name: "finite stock is decremented",
			setupMocks: func(m *TestMocks) {
				m.ProductRepo.On("GetForUpdate", mock.Anything, TestProductID).Return(newTestProduct(intPtr(3)), nil)
				m.Currency.On("Debit", mock.Anything, TestUserID, entities.CurrencyPoints, int64(1000),
					entities.TransactionTypeWithdrawal, "Gift card", mock.AnythingOfType("string")).
					Return(&entities.LedgerEntry{}, nil)
				m.ProductRepo.On("UpdateStock", mock.Anything, TestProductID, 2).Return(nil)
				m.WithdrawalRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *entities.WithdrawalRequest) bool {
					return r.Status == entities.WithdrawalStatusPending && r.PointsUsed == 1000
				})).Return(nil)
				m.EventPublisher.On("Publish", mock.AnythingOfType("events.WithdrawalRequestedEvent")).Return(nil)
			},
		},
		{
			name: "unlimited stock untouched",
			setupMocks: func(m *TestMocks) {
				m.ProductRepo.On("GetForUpdate", mock.Anything, TestProductID).Return(newTestProduct(nil), nil)
				m.Currency.On("Debit", mock.Anything, TestUserID, entities.CurrencyPoints, int64(1000),
					entities.TransactionTypeWithdrawal, "Gift card", mock.AnythingOfType("string")).
					Return(&entities.LedgerEntry{}, nil)
				m.WithdrawalRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.AllowEvents()
			},
		},
		{
			name: "out of stock",
			setupMocks: func(m *TestMocks) {
				m.ProductRepo.On("GetForUpdate", mock.Anything, TestProductID).Return(newTestProduct(intPtr(0)), nil)
			},
			wantErr: entities.ErrOutOfStock,
		},
		{
			name: "unknown product",
			setupMocks: func(m *TestMocks) {
				m.ProductRepo.On("GetForUpdate", mock.Anything, TestProductID).Return(nil, nil)
			},
			wantErr: entities.ErrNotFound,
		},
		{
			name: "not enough points",
			setupMocks: func(m *TestMocks) {
				m.ProductRepo.On("GetForUpdate", mock.Anything, TestProductID).Return(newTestProduct(intPtr(3)), nil)
				m.Currency.On("Debit", mock.Anything, TestUserID, entities.CurrencyPoints, int64(1000),
					entities.TransactionTypeWithdrawal, "Gift card", mock.AnythingOfType("string")).
					Return(nil, entities.ErrInsufficientFunds)
			},
			wantErr: entities.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewTestMocks()
			m.AccountRepo.On("GetForUpdate", mock.Anything, TestUserID).Return(newTestAccount(TestUserID, 5000, 0), nil)
			tt.setupMocks(m)
			service := NewRedemptionService(m.AccountRepo, m.ProductRepo, m.WithdrawalRepo, m.Currency, m.EventPublisher, fixedClock)

			request, err := service.RequestWithdrawal(context.Background(), TestUserID, TestProductID, json.RawMessage(`{"email":"a@b.c"}`))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				m.WithdrawalRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				m.ProductRepo.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, entities.WithdrawalStatusPending, request.Status)
			assert.JSONEq(t, `{"email":"a@b.c"}`, string(request.ContactInfo))
			m.AssertAllExpectations(t)
		})
	}
}

func TestRedemptionService_ProcessWithdrawal(t *testing.T) {
	t.Parallel()

	pending := func() *entities.WithdrawalRequest {
		return &entities.WithdrawalRequest{
			ID:         "withdrawal-1",
			UserID:     TestUserID,
			ProductID:  TestProductID,
			PointsUsed: 1000,
			Status:     entities.WithdrawalStatusPending,
		}
	}

	tests := []struct {
		name       string
		status     entities.WithdrawalStatus
		setupMocks func(m *TestMocks)
		wantErr    error
	}{
		{
			name:   "approve pending",
			status: entities.WithdrawalStatusApproved,
			setupMocks: func(m *TestMocks) {
				m.WithdrawalRepo.On("GetForUpdate", mock.Anything, "withdrawal-1").Return(pending(), nil)
				m.WithdrawalRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(r *entities.WithdrawalRequest) bool {
					return r.Status == entities.WithdrawalStatusApproved && r.ProcessedAt != nil
				})).Return(nil)
				m.EventPublisher.On("Publish", mock.AnythingOfType("events.WithdrawalProcessedEvent")).Return(nil)
			},
		},
		{
			name:   "reject refunds and restores stock",
			status: entities.WithdrawalStatusRejected,
			setupMocks: func(m *TestMocks) {
				m.WithdrawalRepo.On("GetForUpdate", mock.Anything, "withdrawal-1").Return(pending(), nil)
				m.Currency.On("Credit", mock.Anything, TestUserID, entities.CurrencyPoints, int64(1000),
					entities.TransactionTypeWithdrawal, "withdrawal refund", "withdrawal-1").
					Return(&entities.LedgerEntry{}, nil)
				m.ProductRepo.On("GetForUpdate", mock.Anything, TestProductID).Return(newTestProduct(intPtr(0)), nil)
				m.ProductRepo.On("UpdateStock", mock.Anything, TestProductID, 1).Return(nil)
				m.WithdrawalRepo.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)
				m.AllowEvents()
			},
		},
		{
			name:   "complete requires approval first",
			status: entities.WithdrawalStatusCompleted,
			setupMocks: func(m *TestMocks) {
				m.WithdrawalRepo.On("GetForUpdate", mock.Anything, "withdrawal-1").Return(pending(), nil)
			},
			wantErr: entities.ErrInvalidState,
		},
		{
			name:       "cannot move back to pending",
			status:     entities.WithdrawalStatusPending,
			setupMocks: func(m *TestMocks) {},
			wantErr:    entities.ErrInvalidState,
		},
		{
			name:   "unknown withdrawal",
			status: entities.WithdrawalStatusApproved,
			setupMocks: func(m *TestMocks) {
				m.WithdrawalRepo.On("GetForUpdate", mock.Anything, "withdrawal-1").Return(nil, nil)
			},
			wantErr: entities.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewTestMocks()
			tt.setupMocks(m)
			service := NewRedemptionService(m.AccountRepo, m.ProductRepo, m.WithdrawalRepo, m.Currency, m.EventPublisher, fixedClock)

			request, err := service.ProcessWithdrawal(context.Background(), "withdrawal-1", tt.status, "checked")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				m.WithdrawalRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, request.Status)
			require.NotNil(t, request.AdminNotes)
			assert.Equal(t, "checked", *request.AdminNotes)
			m.AssertAllExpectations(t)
		})
	}
}
