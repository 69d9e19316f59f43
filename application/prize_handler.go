package application

import (
	"context"

	"rewards/domain/entities"

	"github.com/google/uuid"
)

// PrizeHandler exposes prize entry with the pity guarantee
type PrizeHandler interface {
	ListPrizes(ctx context.Context, userID string) ([]*entities.PrizeWithPity, error)
	EnterPrize(ctx context.Context, userID, prizeID, requestID string) (*entities.PrizeEntryResult, error)
	GetPityStatus(ctx context.Context, userID, prizeID string) (*entities.PityStatus, error)
	GetEntryHistory(ctx context.Context, userID string, limit, offset int) ([]*entities.PrizeEntry, error)
}

type prizeHandler struct {
	*base
}

// NewPrizeHandler creates a new PrizeHandler
func NewPrizeHandler(deps Dependencies) PrizeHandler {
	return &prizeHandler{base: newBase(deps)}
}

func (h *prizeHandler) ListPrizes(ctx context.Context, userID string) ([]*entities.PrizeWithPity, error) {
	return withUnitOfWork(ctx, h.base, "list_prizes", func(uow UnitOfWork) ([]*entities.PrizeWithPity, error) {
		return h.prizeService(uow).ListWithPity(ctx, userID)
	})
}

// EnterPrize spends tickets on a prize. Retries after a conflict reuse the same request id,
// so an attempt that did commit is replayed rather than paid twice.
func (h *prizeHandler) EnterPrize(ctx context.Context, userID, prizeID, requestID string) (*entities.PrizeEntryResult, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}

	return withUnitOfWork(ctx, h.base, "enter_prize", func(uow UnitOfWork) (*entities.PrizeEntryResult, error) {
		return h.prizeService(uow).EnterPrize(ctx, userID, prizeID, requestID)
	})
}

func (h *prizeHandler) GetPityStatus(ctx context.Context, userID, prizeID string) (*entities.PityStatus, error) {
	return withUnitOfWork(ctx, h.base, "get_pity_status", func(uow UnitOfWork) (*entities.PityStatus, error) {
		return h.prizeService(uow).GetPityStatus(ctx, userID, prizeID)
	})
}

func (h *prizeHandler) GetEntryHistory(ctx context.Context, userID string, limit, offset int) ([]*entities.PrizeEntry, error) {
	return withUnitOfWork(ctx, h.base, "get_prize_entry_history", func(uow UnitOfWork) ([]*entities.PrizeEntry, error) {
		return h.prizeService(uow).GetEntryHistory(ctx, userID, limit, offset)
	})
}
