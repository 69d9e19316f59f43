package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"rewards/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testStartOfDay = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func sinceStartOfDay() interface{} {
	return mock.MatchedBy(func(t time.Time) bool { return t.Equal(testStartOfDay) })
}

func newTestMission(active bool, dailyLimit *int) *entities.Mission {
	return &entities.Mission{
		ID:             TestMissionID,
		Title:          "Watch an ad",
		MissionType:    entities.MissionTypeWatchAd,
		IsActive:       active,
		DailyLimit:     dailyLimit,
		RewardAmount:   10,
		RewardCurrency: entities.CurrencyPoints,
	}
}

func TestMissionService_CanComplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		setupMocks  func(m *TestMocks)
		wantAllowed bool
		wantReason  string
		wantErr     error
	}{
		{
			name: "inactive mission fails closed",
			setupMocks: func(m *TestMocks) {
				m.MissionRepo.On("GetByID", mock.Anything, TestMissionID).Return(newTestMission(false, nil), nil)
			},
			wantAllowed: false,
			wantReason:  entities.ReasonMissionInactive,
		},
		{
			name: "unlimited mission always allowed",
			setupMocks: func(m *TestMocks) {
				m.MissionRepo.On("GetByID", mock.Anything, TestMissionID).Return(newTestMission(true, nil), nil)
			},
			wantAllowed: true,
		},
		{
			name: "below daily limit",
			setupMocks: func(m *TestMocks) {
				m.MissionRepo.On("GetByID", mock.Anything, TestMissionID).Return(newTestMission(true, intPtr(3)), nil)
				m.CompletionRepo.On("CountSince", mock.Anything, TestUserID, TestMissionID, sinceStartOfDay()).Return(2, nil)
			},
			wantAllowed: true,
		},
		{
			name: "daily limit reached",
			setupMocks: func(m *TestMocks) {
				m.MissionRepo.On("GetByID", mock.Anything, TestMissionID).Return(newTestMission(true, intPtr(1)), nil)
				m.CompletionRepo.On("CountSince", mock.Anything, TestUserID, TestMissionID, sinceStartOfDay()).Return(1, nil)
			},
			wantAllowed: false,
			wantReason:  entities.ReasonDailyLimitReached,
		},
		{
			name: "unknown mission",
			setupMocks: func(m *TestMocks) {
				m.MissionRepo.On("GetByID", mock.Anything, TestMissionID).Return(nil, nil)
			},
			wantErr: entities.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewTestMocks()
			tt.setupMocks(m)
			service := NewMissionService(m.AccountRepo, m.MissionRepo, m.CompletionRepo, m.Currency, m.EventPublisher, fixedClock, time.UTC)

			got, err := service.CanComplete(context.Background(), TestUserID, TestMissionID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, got.Allowed)
			assert.Equal(t, tt.wantReason, got.Reason)
			m.AssertAllExpectations(t)
		})
	}
}

func TestMissionService_Complete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		setupMocks  func(m *TestMocks)
		wantErr     error
		errContains string
	}{
		{
			name: "records completion and credits reward",
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetForUpdate", mock.Anything, TestUserID).Return(newTestAccount(TestUserID, 0, 0), nil)
				m.MissionRepo.On("GetByID", mock.Anything, TestMissionID).Return(newTestMission(true, intPtr(1)), nil)
				m.CompletionRepo.On("CountSince", mock.Anything, TestUserID, TestMissionID, sinceStartOfDay()).Return(0, nil)
				m.CompletionRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *entities.MissionCompletion) bool {
					return c.ID != "" && c.CompletedAt.Equal(TestNow) && string(c.ResultData) == `{"score":7}`
				})).Return(nil)
				m.Currency.On("Credit", mock.Anything, TestUserID, entities.CurrencyPoints, int64(10),
					entities.TransactionTypeMissionReward, "Watch an ad", mock.AnythingOfType("string")).
					Return(&entities.LedgerEntry{ID: "ledger-1", Amount: 10, BalanceAfter: 10}, nil)
				m.EventPublisher.On("Publish", mock.AnythingOfType("events.MissionCompletedEvent")).Return(nil)
			},
		},
		{
			name: "limit reached is rejected without mutation",
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetForUpdate", mock.Anything, TestUserID).Return(newTestAccount(TestUserID, 0, 0), nil)
				m.MissionRepo.On("GetByID", mock.Anything, TestMissionID).Return(newTestMission(true, intPtr(1)), nil)
				m.CompletionRepo.On("CountSince", mock.Anything, TestUserID, TestMissionID, sinceStartOfDay()).Return(1, nil)
			},
			wantErr: entities.ErrMissionNotAllowed,
		},
		{
			name: "inactive mission is rejected",
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetForUpdate", mock.Anything, TestUserID).Return(newTestAccount(TestUserID, 0, 0), nil)
				m.MissionRepo.On("GetByID", mock.Anything, TestMissionID).Return(newTestMission(false, nil), nil)
			},
			wantErr: entities.ErrMissionNotAllowed,
		},
		{
			name: "unknown user",
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetForUpdate", mock.Anything, TestUserID).Return(nil, nil)
			},
			wantErr: entities.ErrNotFound,
		},
		{
			name: "completion insert failure",
			setupMocks: func(m *TestMocks) {
				m.AccountRepo.On("GetForUpdate", mock.Anything, TestUserID).Return(newTestAccount(TestUserID, 0, 0), nil)
				m.MissionRepo.On("GetByID", mock.Anything, TestMissionID).Return(newTestMission(true, nil), nil)
				m.CompletionRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db error"))
			},
			errContains: "failed to record mission completion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewTestMocks()
			tt.setupMocks(m)
			service := NewMissionService(m.AccountRepo, m.MissionRepo, m.CompletionRepo, m.Currency, m.EventPublisher, fixedClock, time.UTC)

			entry, err := service.Complete(context.Background(), TestUserID, TestMissionID, json.RawMessage(`{"score":7}`))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				m.CompletionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				m.Currency.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			case tt.errContains != "":
				assert.ErrorContains(t, err, tt.errContains)
			default:
				require.NoError(t, err)
				assert.Equal(t, "ledger-1", entry.ID)
			}
			m.AssertAllExpectations(t)
		})
	}
}

func TestMissionService_CompleteUsesConfiguredDay(t *testing.T) {
	t.Parallel()

	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// 16:00 UTC on June 15 is already June 16 in Seoul
	now := time.Date(2024, 6, 15, 16, 0, 0, 0, time.UTC)
	expectedStart := time.Date(2024, 6, 16, 0, 0, 0, 0, seoul)

	m := NewTestMocks()
	m.MissionRepo.On("GetByID", mock.Anything, TestMissionID).Return(newTestMission(true, intPtr(1)), nil)
	m.CompletionRepo.On("CountSince", mock.Anything, TestUserID, TestMissionID, mock.MatchedBy(func(t time.Time) bool {
		return t.Equal(expectedStart)
	})).Return(0, nil)

	service := NewMissionService(m.AccountRepo, m.MissionRepo, m.CompletionRepo, m.Currency, m.EventPublisher,
		func() time.Time { return now }, seoul)

	got, err := service.CanComplete(context.Background(), TestUserID, TestMissionID)
	require.NoError(t, err)
	assert.True(t, got.Allowed)
	m.AssertAllExpectations(t)
}

func TestMissionService_ListWithProgress(t *testing.T) {
	t.Parallel()

	limited := newTestMission(true, intPtr(2))
	unlimited := &entities.Mission{ID: "mission-2", Title: "Check in", IsActive: true, RewardAmount: 5, RewardCurrency: entities.CurrencyTickets}

	m := NewTestMocks()
	m.MissionRepo.On("ListActive", mock.Anything).Return([]*entities.Mission{limited, unlimited}, nil)
	m.CompletionRepo.On("CountByMissionSince", mock.Anything, TestUserID, sinceStartOfDay()).
		Return(map[string]int{TestMissionID: 2, "mission-2": 9}, nil)

	service := NewMissionService(m.AccountRepo, m.MissionRepo, m.CompletionRepo, m.Currency, m.EventPublisher, fixedClock, time.UTC)

	progress, err := service.ListWithProgress(context.Background(), TestUserID)
	require.NoError(t, err)
	require.Len(t, progress, 2)

	assert.Equal(t, 2, progress[0].TodayCompletionCount)
	assert.False(t, progress[0].CanComplete)
	assert.Equal(t, 9, progress[1].TodayCompletionCount)
	assert.True(t, progress[1].CanComplete)
	m.AssertAllExpectations(t)
}
