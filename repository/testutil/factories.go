package testutil

import (
	"strings"
	"time"

	"rewards/domain/entities"

	"github.com/google/uuid"
)

// CreateTestAccount creates an account with a unique referral code
func CreateTestAccount(userID string) *entities.Account {
	return &entities.Account{
		UserID:       userID,
		Username:     "user_" + userID,
		ReferralCode: strings.ToUpper(uuid.NewString()[:8]),
		CreatedAt:    time.Now().UTC(),
	}
}

// CreateTestMission creates an active points mission
func CreateTestMission(id string, dailyLimit *int) *entities.Mission {
	return &entities.Mission{
		ID:             id,
		Title:          "Mission " + id,
		MissionType:    entities.MissionTypeWatchAd,
		IsActive:       true,
		DailyLimit:     dailyLimit,
		RewardAmount:   10,
		RewardCurrency: entities.CurrencyPoints,
	}
}

// CreateTestPrize creates an active prize costing one ticket with the given threshold
func CreateTestPrize(id string, threshold int) *entities.Prize {
	return &entities.Prize{
		ID:                 id,
		Name:               "Prize " + id,
		IsActive:           true,
		TicketsPerEntry:    1,
		PityThreshold:      threshold,
		PityRewardAmount:   100,
		PityRewardCurrency: entities.CurrencyPoints,
	}
}

// CreateTestProduct creates an active reward product; a nil stock means unlimited
func CreateTestProduct(id string, pointsRequired int64, stock *int) *entities.RewardProduct {
	return &entities.RewardProduct{
		ID:             id,
		Name:           "Product " + id,
		PointsRequired: pointsRequired,
		Stock:          stock,
		IsActive:       true,
	}
}

// CreateTestLedgerEntry creates a credit entry
func CreateTestLedgerEntry(userID string, currency entities.Currency, amount, balanceAfter int64) *entities.LedgerEntry {
	return &entities.LedgerEntry{
		UserID:          userID,
		Currency:        currency,
		Amount:          amount,
		BalanceAfter:    balanceAfter,
		TransactionType: entities.TransactionTypeAdminAdjustment,
		Description:     entities.StringPtr("test entry"),
	}
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
