package application

import (
	"context"
	"fmt"

	"rewards/domain/entities"

	log "github.com/sirupsen/logrus"
)

// Catalog is the reference data users interact with
type Catalog struct {
	Missions []*entities.Mission
	Prizes   []*entities.Prize
	Products []*entities.RewardProduct
}

// CatalogHandler maintains missions, prizes and reward products
type CatalogHandler interface {
	Upsert(ctx context.Context, catalog Catalog) error
}

type catalogHandler struct {
	*base
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(deps Dependencies) CatalogHandler {
	return &catalogHandler{base: newBase(deps)}
}

// Upsert writes the whole catalog in one unit of work
func (h *catalogHandler) Upsert(ctx context.Context, catalog Catalog) error {
	for _, prize := range catalog.Prizes {
		if err := prize.Validate(); err != nil {
			return fmt.Errorf("prize %s: %v: %w", prize.ID, err, entities.ErrInvalidArgument)
		}
	}
	for _, mission := range catalog.Missions {
		if mission.RewardAmount <= 0 || !mission.RewardCurrency.IsValid() {
			return fmt.Errorf("mission %s has an invalid reward: %w", mission.ID, entities.ErrInvalidArgument)
		}
	}

	_, err := withUnitOfWork(ctx, h.base, "upsert_catalog", func(uow UnitOfWork) (struct{}, error) {
		for _, mission := range catalog.Missions {
			if err := uow.MissionRepository().Upsert(ctx, mission); err != nil {
				return struct{}{}, err
			}
		}
		for _, prize := range catalog.Prizes {
			if err := uow.PrizeRepository().Upsert(ctx, prize); err != nil {
				return struct{}{}, err
			}
		}
		for _, product := range catalog.Products {
			if err := uow.RewardProductRepository().Upsert(ctx, product); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"missions": len(catalog.Missions),
		"prizes":   len(catalog.Prizes),
		"products": len(catalog.Products),
	}).Info("Catalog upserted")
	return nil
}
