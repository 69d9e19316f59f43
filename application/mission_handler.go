package application

import (
	"context"
	"encoding/json"

	"rewards/domain/entities"
)

// MissionHandler exposes the mission catalog and the completion gate
type MissionHandler interface {
	ListMissions(ctx context.Context, userID string) ([]*entities.MissionProgress, error)
	CanComplete(ctx context.Context, userID, missionID string) (*entities.Eligibility, error)
	CompleteMission(ctx context.Context, userID, missionID string, resultData json.RawMessage) (*entities.LedgerEntry, error)
}

type missionHandler struct {
	*base
}

// NewMissionHandler creates a new MissionHandler
func NewMissionHandler(deps Dependencies) MissionHandler {
	return &missionHandler{base: newBase(deps)}
}

func (h *missionHandler) ListMissions(ctx context.Context, userID string) ([]*entities.MissionProgress, error) {
	return withUnitOfWork(ctx, h.base, "list_missions", func(uow UnitOfWork) ([]*entities.MissionProgress, error) {
		return h.missionService(uow).ListWithProgress(ctx, userID)
	})
}

func (h *missionHandler) CanComplete(ctx context.Context, userID, missionID string) (*entities.Eligibility, error) {
	return withUnitOfWork(ctx, h.base, "can_complete_mission", func(uow UnitOfWork) (*entities.Eligibility, error) {
		return h.missionService(uow).CanComplete(ctx, userID, missionID)
	})
}

// CompleteMission records the completion and pays the reward, or fails with ErrMissionNotAllowed
func (h *missionHandler) CompleteMission(ctx context.Context, userID, missionID string, resultData json.RawMessage) (*entities.LedgerEntry, error) {
	return withUnitOfWork(ctx, h.base, "complete_mission", func(uow UnitOfWork) (*entities.LedgerEntry, error) {
		return h.missionService(uow).Complete(ctx, userID, missionID, resultData)
	})
}
