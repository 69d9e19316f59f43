package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rewards/domain/entities"
	"rewards/domain/events"
	"rewards/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// referralCodeLength is the number of characters in a generated referral code
const referralCodeLength = 8

// AccountSettings holds the bonuses paid on account lifecycle events
type AccountSettings struct {
	SignupBonusPoints    int64
	ReferralBonusPoints  int64
	ReferralBonusTickets int64
}

// accountService opens accounts and applies referral codes
type accountService struct {
	accountRepo    interfaces.AccountRepository
	currency       interfaces.CurrencyService
	eventPublisher interfaces.EventPublisher
	settings       AccountSettings
	clock          Clock
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo interfaces.AccountRepository,
	currency interfaces.CurrencyService,
	eventPublisher interfaces.EventPublisher,
	settings AccountSettings,
	clock Clock,
) interfaces.AccountService {
	if clock == nil {
		clock = time.Now
	}
	return &accountService{
		accountRepo:    accountRepo,
		currency:       currency,
		eventPublisher: eventPublisher,
		settings:       settings,
		clock:          clock,
	}
}

// OpenAccount creates an account with zero balances. The signup bonus goes through the ledger
// so the balance can still be rebuilt from entries.
func (s *accountService) OpenAccount(ctx context.Context, userID, username string) (*entities.Account, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", entities.ErrInvalidArgument)
	}

	existing, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("account %s: %w", userID, entities.ErrAlreadyExists)
	}

	now := s.clock()
	account := &entities.Account{
		UserID:       userID,
		Username:     username,
		ReferralCode: NewReferralCode(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if s.settings.SignupBonusPoints > 0 {
		entry, err := s.currency.AddPoints(ctx, userID, s.settings.SignupBonusPoints,
			entities.TransactionTypeAdminAdjustment, "signup bonus", "")
		if err != nil {
			return nil, fmt.Errorf("failed to credit signup bonus: %w", err)
		}
		account.Points = entry.BalanceAfter
	}

	if err := s.eventPublisher.Publish(events.AccountOpenedEvent{
		UserID:       account.UserID,
		Username:     account.Username,
		ReferralCode: account.ReferralCode,
	}); err != nil {
		log.WithError(err).Error("Failed to publish account opened event")
	}

	log.WithFields(log.Fields{
		"userID":   userID,
		"username": username,
	}).Info("Account opened")

	return account, nil
}

// GetAccount returns an account or ErrNotFound
func (s *accountService) GetAccount(ctx context.Context, userID string) (*entities.Account, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}
	return account, nil
}

// ApplyReferral links the user to the owner of code once and pays both sides
func (s *accountService) ApplyReferral(ctx context.Context, userID, code string) (*entities.Account, error) {
	account, err := s.accountRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}
	if account.HasReferrer() {
		return nil, fmt.Errorf("account %s was already referred: %w", userID, entities.ErrReferralNotAllowed)
	}

	referrer, err := s.accountRepo.GetByReferralCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}
	if referrer == nil {
		return nil, fmt.Errorf("referral code %q: %w", code, entities.ErrNotFound)
	}
	if referrer.UserID == userID {
		return nil, fmt.Errorf("cannot use own referral code: %w", entities.ErrReferralNotAllowed)
	}

	if err := s.accountRepo.SetReferredBy(ctx, userID, referrer.UserID); err != nil {
		return nil, fmt.Errorf("failed to record referrer: %w", err)
	}

	for _, bonus := range []struct {
		currency entities.Currency
		amount   int64
	}{
		{entities.CurrencyPoints, s.settings.ReferralBonusPoints},
		{entities.CurrencyTickets, s.settings.ReferralBonusTickets},
	} {
		if bonus.amount <= 0 {
			continue
		}
		if _, err := s.currency.Credit(ctx, userID, bonus.currency, bonus.amount,
			entities.TransactionTypeReferral, "referral bonus", referrer.UserID); err != nil {
			return nil, fmt.Errorf("failed to credit referee bonus: %w", err)
		}
		if _, err := s.currency.Credit(ctx, referrer.UserID, bonus.currency, bonus.amount,
			entities.TransactionTypeReferral, "referral bonus", userID); err != nil {
			return nil, fmt.Errorf("failed to credit referrer bonus: %w", err)
		}
	}

	log.WithFields(log.Fields{
		"userID":     userID,
		"referrerID": referrer.UserID,
	}).Info("Referral applied")

	updated, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload account: %w", err)
	}
	return updated, nil
}

// NewReferralCode returns a random upper-case referral code
func NewReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:referralCodeLength])
}
