package utils

import (
	"context"
	"fmt"

	"rewards/domain/entities"
	"rewards/domain/events"
	"rewards/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordLedgerEntry appends a ledger entry and emits the matching balance event.
// This is the single entry point for all ledger writes in the system.
func RecordLedgerEntry(ctx context.Context, ledgerRepo interfaces.LedgerRepository, eventPublisher interfaces.EventPublisher, entry *entities.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid ledger entry: %w", err)
	}

	if err := ledgerRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	event := events.BalanceChangedEvent{
		UserID:          entry.UserID,
		Currency:        entry.Currency,
		OldBalance:      entry.BalanceBefore(),
		NewBalance:      entry.BalanceAfter,
		Amount:          entry.Amount,
		TransactionType: entry.TransactionType,
		LedgerEntryID:   entry.ID,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"currency":        event.Currency,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
		"amount":          event.Amount,
	}).Debug("Publishing BalanceChangedEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance changed event")
	}

	return nil
}
