package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rewards/domain/entities"
	"rewards/domain/events"
	"rewards/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// redemptionService handles point redemption for reward products
type redemptionService struct {
	accountRepo    interfaces.AccountRepository
	productRepo    interfaces.RewardProductRepository
	withdrawalRepo interfaces.WithdrawalRepository
	currency       interfaces.CurrencyService
	eventPublisher interfaces.EventPublisher
	clock          Clock
}

// NewRedemptionService creates a new redemption service
func NewRedemptionService(
	accountRepo interfaces.AccountRepository,
	productRepo interfaces.RewardProductRepository,
	withdrawalRepo interfaces.WithdrawalRepository,
	currency interfaces.CurrencyService,
	eventPublisher interfaces.EventPublisher,
	clock Clock,
) interfaces.RedemptionService {
	if clock == nil {
		clock = time.Now
	}
	return &redemptionService{
		accountRepo:    accountRepo,
		productRepo:    productRepo,
		withdrawalRepo: withdrawalRepo,
		currency:       currency,
		eventPublisher: eventPublisher,
		clock:          clock,
	}
}

// ListProducts returns the active reward products
func (s *redemptionService) ListProducts(ctx context.Context) ([]*entities.RewardProduct, error) {
	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward products: %w", err)
	}
	return products, nil
}

// RequestWithdrawal debits the product price and reserves one unit of stock
func (s *redemptionService) RequestWithdrawal(ctx context.Context, userID, productID string, contactInfo json.RawMessage) (*entities.WithdrawalRequest, error) {
	account, err := s.accountRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}

	product, err := s.productRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock reward product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, fmt.Errorf("reward product %s: %w", productID, entities.ErrNotFound)
	}
	if !product.InStock() {
		return nil, fmt.Errorf("reward product %s: %w", productID, entities.ErrOutOfStock)
	}

	now := s.clock()
	if len(contactInfo) == 0 {
		contactInfo = json.RawMessage(`{}`)
	}
	request := &entities.WithdrawalRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   product.ID,
		PointsUsed:  product.PointsRequired,
		ContactInfo: contactInfo,
		Status:      entities.WithdrawalStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.currency.DeductPoints(ctx, userID, product.PointsRequired,
		entities.TransactionTypeWithdrawal, product.Name, request.ID); err != nil {
		return nil, fmt.Errorf("failed to pay for reward product: %w", err)
	}

	if !product.IsUnlimited() {
		if err := s.productRepo.UpdateStock(ctx, product.ID, *product.Stock-1); err != nil {
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
	}

	if err := s.withdrawalRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	if err := s.eventPublisher.Publish(events.WithdrawalRequestedEvent{
		WithdrawalID: request.ID,
		UserID:       userID,
		ProductID:    product.ID,
		PointsUsed:   request.PointsUsed,
	}); err != nil {
		log.WithError(err).Error("Failed to publish withdrawal requested event")
	}

	log.WithFields(log.Fields{
		"userID":       userID,
		"productID":    product.ID,
		"withdrawalID": request.ID,
		"points":       request.PointsUsed,
	}).Info("Withdrawal requested")

	return request, nil
}

// ProcessWithdrawal moves a request to status. Rejection refunds the points and restores stock.
func (s *redemptionService) ProcessWithdrawal(ctx context.Context, withdrawalID string, status entities.WithdrawalStatus, adminNotes string) (*entities.WithdrawalRequest, error) {
	if !status.IsValid() || status == entities.WithdrawalStatusPending {
		return nil, fmt.Errorf("cannot move withdrawal to %q: %w", status, entities.ErrInvalidState)
	}

	request, err := s.withdrawalRepo.GetForUpdate(ctx, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock withdrawal request: %w", err)
	}
	if request == nil {
		return nil, fmt.Errorf("withdrawal %s: %w", withdrawalID, entities.ErrNotFound)
	}

	oldStatus := request.Status
	if !oldStatus.CanTransitionTo(status) {
		return nil, fmt.Errorf("withdrawal %s is %s, cannot move to %s: %w", withdrawalID, oldStatus, status, entities.ErrInvalidState)
	}

	if status == entities.WithdrawalStatusRejected {
		if _, err := s.currency.AddPoints(ctx, request.UserID, request.PointsUsed,
			entities.TransactionTypeWithdrawal, "withdrawal refund", request.ID); err != nil {
			return nil, fmt.Errorf("failed to refund withdrawal: %w", err)
		}

		product, err := s.productRepo.GetForUpdate(ctx, request.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock reward product: %w", err)
		}
		if product != nil && !product.IsUnlimited() {
			if err := s.productRepo.UpdateStock(ctx, product.ID, *product.Stock+1); err != nil {
				return nil, fmt.Errorf("failed to restore stock: %w", err)
			}
		}
	}

	now := s.clock()
	request.Status = status
	request.AdminNotes = entities.StringPtr(adminNotes)
	request.ProcessedAt = &now
	request.UpdatedAt = now
	if err := s.withdrawalRepo.UpdateStatus(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to update withdrawal status: %w", err)
	}

	if err := s.eventPublisher.Publish(events.WithdrawalProcessedEvent{
		WithdrawalID: request.ID,
		UserID:       request.UserID,
		OldStatus:    oldStatus,
		NewStatus:    status,
	}); err != nil {
		log.WithError(err).Error("Failed to publish withdrawal processed event")
	}

	log.WithFields(log.Fields{
		"withdrawalID": request.ID,
		"oldStatus":    oldStatus,
		"newStatus":    status,
	}).Info("Withdrawal processed")

	return request, nil
}

// ListWithdrawals returns the user's requests newest first
func (s *redemptionService) ListWithdrawals(ctx context.Context, userID string, limit, offset int) ([]*entities.WithdrawalRequest, error) {
	limit, offset = normalizePage(limit, offset)
	requests, err := s.withdrawalRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return requests, nil
}
