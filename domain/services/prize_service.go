package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewards/domain/entities"
	"rewards/domain/events"
	"rewards/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// prizeService runs ticket-funded prize entries with a pity guarantee
type prizeService struct {
	accountRepo    interfaces.AccountRepository
	prizeRepo      interfaces.PrizeRepository
	entryRepo      interfaces.PrizeEntryRepository
	pityRepo       interfaces.PityCounterRepository
	currency       interfaces.CurrencyService
	eventPublisher interfaces.EventPublisher
	clock          Clock
}

// NewPrizeService creates a new prize service
func NewPrizeService(
	accountRepo interfaces.AccountRepository,
	prizeRepo interfaces.PrizeRepository,
	entryRepo interfaces.PrizeEntryRepository,
	pityRepo interfaces.PityCounterRepository,
	currency interfaces.CurrencyService,
	eventPublisher interfaces.EventPublisher,
	clock Clock,
) interfaces.PrizeService {
	if clock == nil {
		clock = time.Now
	}
	return &prizeService{
		accountRepo:    accountRepo,
		prizeRepo:      prizeRepo,
		entryRepo:      entryRepo,
		pityRepo:       pityRepo,
		currency:       currency,
		eventPublisher: eventPublisher,
		clock:          clock,
	}
}

// EnterPrize spends tickets on a prize and pays the guaranteed reward once the pity threshold is reached.
// A requestID already used by the user returns the stored entry without mutating anything.
func (s *prizeService) EnterPrize(ctx context.Context, userID, prizeID, requestID string) (*entities.PrizeEntryResult, error) {
	account, err := s.accountRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}

	if requestID == "" {
		requestID = uuid.NewString()
	} else {
		existing, err := s.entryRepo.GetByRequestID(ctx, userID, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up prize entry by request: %w", err)
		}
		if existing != nil && existing.PrizeID != prizeID {
			return nil, fmt.Errorf("request %s was used for prize %s: %w", requestID, existing.PrizeID, entities.ErrInvalidArgument)
		}
		if existing != nil {
			log.WithFields(log.Fields{
				"userID":    userID,
				"requestID": requestID,
				"entryID":   existing.ID,
			}).Debug("Replaying stored prize entry")
			return &entities.PrizeEntryResult{Entry: existing, PityTriggered: existing.PityTriggered, Replayed: true}, nil
		}
	}

	prize, err := s.prizeRepo.GetByID(ctx, prizeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prize: %w", err)
	}
	if prize == nil {
		return nil, fmt.Errorf("prize %s: %w", prizeID, entities.ErrNotFound)
	}
	if !prize.IsActive {
		return nil, fmt.Errorf("prize %s: %w", prizeID, entities.ErrPrizeInactive)
	}

	now := s.clock()
	entry := &entities.PrizeEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		PrizeID:     prize.ID,
		RequestID:   requestID,
		TicketsUsed: prize.TicketsPerEntry,
		CreatedAt:   now,
	}

	if _, err := s.currency.Debit(ctx, userID, entities.CurrencyTickets, prize.TicketsPerEntry,
		entities.TransactionTypePrizeEntry, prize.Name, entry.ID); err != nil {
		return nil, fmt.Errorf("failed to pay prize entry: %w", err)
	}

	counter, err := s.pityRepo.GetOrCreateForUpdate(ctx, userID, prize.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock pity counter: %w", err)
	}
	counter.Increment(now)
	entry.PityTriggered = counter.ReachedThreshold(prize.PityThreshold)

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, entities.ErrAlreadyExists) {
			// A concurrent request with the same key won; retrying replays its entry.
			return nil, fmt.Errorf("prize entry request %s raced: %w", requestID, entities.ErrTransactionConflict)
		}
		return nil, fmt.Errorf("failed to record prize entry: %w", err)
	}

	if entry.PityTriggered {
		if _, err := s.currency.Credit(ctx, userID, prize.PityRewardCurrency, prize.PityRewardAmount,
			entities.TransactionTypePrizePity, prize.Name, prize.ID); err != nil {
			return nil, fmt.Errorf("failed to pay pity reward: %w", err)
		}
		counter.Reset(now)
	}

	if err := s.pityRepo.Save(ctx, counter); err != nil {
		return nil, fmt.Errorf("failed to save pity counter: %w", err)
	}

	s.publish(events.PrizeEnteredEvent{
		UserID:      userID,
		PrizeID:     prize.ID,
		EntryID:     entry.ID,
		TicketsUsed: entry.TicketsUsed,
		PityCount:   counter.CurrentCount,
	})
	if entry.PityTriggered {
		s.publish(events.PityTriggeredEvent{
			UserID:         userID,
			PrizeID:        prize.ID,
			EntryID:        entry.ID,
			RewardAmount:   prize.PityRewardAmount,
			RewardCurrency: prize.PityRewardCurrency,
		})
	}

	log.WithFields(log.Fields{
		"userID":        userID,
		"prizeID":       prize.ID,
		"entryID":       entry.ID,
		"pityCount":     counter.CurrentCount,
		"pityTriggered": entry.PityTriggered,
	}).Info("Prize entered")

	return &entities.PrizeEntryResult{Entry: entry, PityTriggered: entry.PityTriggered}, nil
}

// GetPityStatus returns the user's progress towards the guaranteed reward
func (s *prizeService) GetPityStatus(ctx context.Context, userID, prizeID string) (*entities.PityStatus, error) {
	prize, err := s.prizeRepo.GetByID(ctx, prizeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prize: %w", err)
	}
	if prize == nil {
		return nil, fmt.Errorf("prize %s: %w", prizeID, entities.ErrNotFound)
	}

	counter, err := s.pityRepo.Get(ctx, userID, prizeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pity counter: %w", err)
	}

	status := &entities.PityStatus{Threshold: prize.PityThreshold}
	if counter != nil {
		status.CurrentCount = counter.CurrentCount
	}
	return status, nil
}

// ListWithPity returns active prizes with the user's pity progress
func (s *prizeService) ListWithPity(ctx context.Context, userID string) ([]*entities.PrizeWithPity, error) {
	prizes, err := s.prizeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}

	counters, err := s.pityRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pity counters: %w", err)
	}
	counts := make(map[string]int, len(counters))
	for _, c := range counters {
		counts[c.PrizeID] = c.CurrentCount
	}

	result := make([]*entities.PrizeWithPity, 0, len(prizes))
	for _, prize := range prizes {
		count := counts[prize.ID]
		result = append(result, &entities.PrizeWithPity{
			Prize:          *prize,
			PityCount:      count,
			PityPercentage: prize.PityPercentage(count),
		})
	}
	return result, nil
}

// GetEntryHistory returns the user's entries newest first
func (s *prizeService) GetEntryHistory(ctx context.Context, userID string, limit, offset int) ([]*entities.PrizeEntry, error) {
	limit, offset = normalizePage(limit, offset)
	entries, err := s.entryRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list prize entries: %w", err)
	}
	return entries, nil
}

func (s *prizeService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish prize event")
	}
}
