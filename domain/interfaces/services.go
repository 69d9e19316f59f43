package interfaces

import (
	"context"
	"encoding/json"

	"rewards/domain/entities"
)

// CurrencyService mutates balances and appends the matching ledger entry as one unit
type CurrencyService interface {
	// GetBalance returns both balances of a user
	GetBalance(ctx context.Context, userID string) (*entities.Balance, error)

	// Credit adds a positive amount to a balance
	Credit(ctx context.Context, userID string, currency entities.Currency, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error)

	// Debit removes a positive amount from a balance, rejecting with ErrInsufficientFunds instead of going below zero
	Debit(ctx context.Context, userID string, currency entities.Currency, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error)

	AddPoints(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error)
	DeductPoints(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error)
	AddTickets(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error)
	DeductTickets(ctx context.Context, userID string, amount int64, txType entities.TransactionType, description, referenceID string) (*entities.LedgerEntry, error)

	// Adjust applies a signed admin delta
	Adjust(ctx context.Context, userID string, currency entities.Currency, delta int64, description string) (*entities.LedgerEntry, error)

	// History returns ledger entries newest first
	History(ctx context.Context, userID string, currency *entities.Currency, limit, offset int) ([]*entities.LedgerEntry, error)
}

// MissionService gates and rewards mission completions
type MissionService interface {
	// CanComplete reports whether the user may complete the mission right now
	CanComplete(ctx context.Context, userID, missionID string) (*entities.Eligibility, error)

	// Complete records a completion and credits the reward
	Complete(ctx context.Context, userID, missionID string, resultData json.RawMessage) (*entities.LedgerEntry, error)

	// ListWithProgress returns active missions with today's completion counts
	ListWithProgress(ctx context.Context, userID string) ([]*entities.MissionProgress, error)
}

// PrizeService runs prize entries and the pity guarantee
type PrizeService interface {
	// EnterPrize spends tickets on a prize and pays the guaranteed reward when the pity threshold is reached
	EnterPrize(ctx context.Context, userID, prizeID, requestID string) (*entities.PrizeEntryResult, error)

	// GetPityStatus returns the user's progress towards the guaranteed reward
	GetPityStatus(ctx context.Context, userID, prizeID string) (*entities.PityStatus, error)

	// ListWithPity returns active prizes with the user's pity progress
	ListWithPity(ctx context.Context, userID string) ([]*entities.PrizeWithPity, error)

	// GetEntryHistory returns the user's entries newest first
	GetEntryHistory(ctx context.Context, userID string, limit, offset int) ([]*entities.PrizeEntry, error)
}

// AccountService opens accounts and applies referrals
type AccountService interface {
	// OpenAccount creates an account with zero balances and credits the signup bonus, if any
	OpenAccount(ctx context.Context, userID, username string) (*entities.Account, error)

	GetAccount(ctx context.Context, userID string) (*entities.Account, error)

	// ApplyReferral links the user to the owner of code and pays both sides the referral bonus
	ApplyReferral(ctx context.Context, userID, code string) (*entities.Account, error)
}

// RedemptionService handles point redemption for reward products
type RedemptionService interface {
	ListProducts(ctx context.Context) ([]*entities.RewardProduct, error)

	// RequestWithdrawal debits the product price and reserves one unit of stock
	RequestWithdrawal(ctx context.Context, userID, productID string, contactInfo json.RawMessage) (*entities.WithdrawalRequest, error)

	// ProcessWithdrawal moves a request to status, refunding on rejection
	ProcessWithdrawal(ctx context.Context, withdrawalID string, status entities.WithdrawalStatus, adminNotes string) (*entities.WithdrawalRequest, error)

	ListWithdrawals(ctx context.Context, userID string, limit, offset int) ([]*entities.WithdrawalRequest, error)
}
