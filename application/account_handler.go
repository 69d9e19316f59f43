package application

import (
	"context"

	"rewards/domain/entities"
)

// AccountHandler opens accounts and applies referral codes
type AccountHandler interface {
	OpenAccount(ctx context.Context, userID, username string) (*entities.Account, error)
	GetAccount(ctx context.Context, userID string) (*entities.Account, error)
	ApplyReferral(ctx context.Context, userID, code string) (*entities.Account, error)
}

type accountHandler struct {
	*base
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(deps Dependencies) AccountHandler {
	return &accountHandler{base: newBase(deps)}
}

func (h *accountHandler) OpenAccount(ctx context.Context, userID, username string) (*entities.Account, error) {
	return withUnitOfWork(ctx, h.base, "open_account", func(uow UnitOfWork) (*entities.Account, error) {
		return h.accountService(uow).OpenAccount(ctx, userID, username)
	})
}

func (h *accountHandler) GetAccount(ctx context.Context, userID string) (*entities.Account, error) {
	return withUnitOfWork(ctx, h.base, "get_account", func(uow UnitOfWork) (*entities.Account, error) {
		return h.accountService(uow).GetAccount(ctx, userID)
	})
}

func (h *accountHandler) ApplyReferral(ctx context.Context, userID, code string) (*entities.Account, error) {
	return withUnitOfWork(ctx, h.base, "apply_referral", func(uow UnitOfWork) (*entities.Account, error) {
		return h.accountService(uow).ApplyReferral(ctx, userID, code)
	})
}
