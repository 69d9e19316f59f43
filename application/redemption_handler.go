package application

import (
	"context"
	"encoding/json"

	"rewards/domain/entities"
)

// RedemptionHandler exposes point redemption for reward products
type RedemptionHandler interface {
	ListProducts(ctx context.Context) ([]*entities.RewardProduct, error)
	RequestWithdrawal(ctx context.Context, userID, productID string, contactInfo json.RawMessage) (*entities.WithdrawalRequest, error)
	ProcessWithdrawal(ctx context.Context, withdrawalID string, status entities.WithdrawalStatus, adminNotes string) (*entities.WithdrawalRequest, error)
	ListWithdrawals(ctx context.Context, userID string, limit, offset int) ([]*entities.WithdrawalRequest, error)
}

type redemptionHandler struct {
	*base
}

// NewRedemptionHandler creates a new RedemptionHandler
func NewRedemptionHandler(deps Dependencies) RedemptionHandler {
	return &redemptionHandler{base: newBase(deps)}
}

func (h *redemptionHandler) ListProducts(ctx context.Context) ([]*entities.RewardProduct, error) {
	return withUnitOfWork(ctx, h.base, "list_products", func(uow UnitOfWork) ([]*entities.RewardProduct, error) {
		return h.redemptionService(uow).ListProducts(ctx)
	})
}

func (h *redemptionHandler) RequestWithdrawal(ctx context.Context, userID, productID string, contactInfo json.RawMessage) (*entities.WithdrawalRequest, error) {
	return withUnitOfWork(ctx, h.base, "request_withdrawal", func(uow UnitOfWork) (*entities.WithdrawalRequest, error) {
		return h.redemptionService(uow).RequestWithdrawal(ctx, userID, productID, contactInfo)
	})
}

func (h *redemptionHandler) ProcessWithdrawal(ctx context.Context, withdrawalID string, status entities.WithdrawalStatus, adminNotes string) (*entities.WithdrawalRequest, error) {
	return withUnitOfWork(ctx, h.base, "process_withdrawal", func(uow UnitOfWork) (*entities.WithdrawalRequest, error) {
		return h.redemptionService(uow).ProcessWithdrawal(ctx, withdrawalID, status, adminNotes)
	})
}

func (h *redemptionHandler) ListWithdrawals(ctx context.Context, userID string, limit, offset int) ([]*entities.WithdrawalRequest, error) {
	return withUnitOfWork(ctx, h.base, "list_withdrawals", func(uow UnitOfWork) ([]*entities.WithdrawalRequest, error) {
		return h.redemptionService(uow).ListWithdrawals(ctx, userID, limit, offset)
	})
}
