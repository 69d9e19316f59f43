package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rewards/domain/entities"
	"rewards/domain/events"
	"rewards/domain/interfaces"
	"rewards/domain/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Clock returns the current time
type Clock func() time.Time

// missionService gates mission completions and pays their rewards
type missionService struct {
	accountRepo    interfaces.AccountRepository
	missionRepo    interfaces.MissionRepository
	completionRepo interfaces.MissionCompletionRepository
	currency       interfaces.CurrencyService
	eventPublisher interfaces.EventPublisher
	clock          Clock
	location       *time.Location
}

// NewMissionService creates a new mission service. Calendar days are computed in location.
func NewMissionService(
	accountRepo interfaces.AccountRepository,
	missionRepo interfaces.MissionRepository,
	completionRepo interfaces.MissionCompletionRepository,
	currency interfaces.CurrencyService,
	eventPublisher interfaces.EventPublisher,
	clock Clock,
	location *time.Location,
) interfaces.MissionService {
	if clock == nil {
		clock = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &missionService{
		accountRepo:    accountRepo,
		missionRepo:    missionRepo,
		completionRepo: completionRepo,
		currency:       currency,
		eventPublisher: eventPublisher,
		clock:          clock,
		location:       location,
	}
}

// CanComplete reports whether the user may complete the mission right now
func (s *missionService) CanComplete(ctx context.Context, userID, missionID string) (*entities.Eligibility, error) {
	mission, err := s.getMission(ctx, missionID)
	if err != nil {
		return nil, err
	}
	return s.checkEligibility(ctx, userID, mission)
}

// Complete records a completion and credits the mission reward.
// The account row is locked first so concurrent completions by the same user serialize on the limit check.
func (s *missionService) Complete(ctx context.Context, userID, missionID string, resultData json.RawMessage) (*entities.LedgerEntry, error) {
	account, err := s.accountRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}

	mission, err := s.getMission(ctx, missionID)
	if err != nil {
		return nil, err
	}

	eligibility, err := s.checkEligibility(ctx, userID, mission)
	if err != nil {
		return nil, err
	}
	if !eligibility.Allowed {
		return nil, fmt.Errorf("%s: %w", eligibility.Reason, entities.ErrMissionNotAllowed)
	}

	if len(resultData) == 0 {
		resultData = json.RawMessage(`{}`)
	}
	completion := &entities.MissionCompletion{
		ID:          uuid.NewString(),
		UserID:      userID,
		MissionID:   mission.ID,
		CompletedAt: s.clock(),
		ResultData:  resultData,
	}
	if err := s.completionRepo.Create(ctx, completion); err != nil {
		return nil, fmt.Errorf("failed to record mission completion: %w", err)
	}

	entry, err := s.currency.Credit(ctx, userID, mission.RewardCurrency, mission.RewardAmount,
		entities.TransactionTypeMissionReward, mission.Title, completion.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to credit mission reward: %w", err)
	}

	if err := s.eventPublisher.Publish(events.MissionCompletedEvent{
		UserID:         userID,
		MissionID:      mission.ID,
		CompletionID:   completion.ID,
		RewardAmount:   mission.RewardAmount,
		RewardCurrency: mission.RewardCurrency,
	}); err != nil {
		log.WithError(err).Error("Failed to publish mission completed event")
	}

	log.WithFields(log.Fields{
		"userID":       userID,
		"missionID":    mission.ID,
		"completionID": completion.ID,
		"reward":       mission.RewardAmount,
		"currency":     mission.RewardCurrency,
	}).Info("Mission completed")

	return entry, nil
}

// ListWithProgress returns active missions with today's completion counts
func (s *missionService) ListWithProgress(ctx context.Context, userID string) ([]*entities.MissionProgress, error) {
	missions, err := s.missionRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}

	counts, err := s.completionRepo.CountByMissionSince(ctx, userID, s.startOfToday())
	if err != nil {
		return nil, fmt.Errorf("failed to count today's completions: %w", err)
	}

	progress := make([]*entities.MissionProgress, 0, len(missions))
	for _, mission := range missions {
		count := counts[mission.ID]
		progress = append(progress, &entities.MissionProgress{
			Mission:              *mission,
			TodayCompletionCount: count,
			CanComplete:          mission.IsActive && !mission.LimitReached(count),
		})
	}
	return progress, nil
}

func (s *missionService) getMission(ctx context.Context, missionID string) (*entities.Mission, error) {
	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	if mission == nil {
		return nil, fmt.Errorf("mission %s: %w", missionID, entities.ErrNotFound)
	}
	return mission, nil
}

// checkEligibility fails closed on inactive missions before looking at the daily count
func (s *missionService) checkEligibility(ctx context.Context, userID string, mission *entities.Mission) (*entities.Eligibility, error) {
	if !mission.IsActive {
		return &entities.Eligibility{Allowed: false, Reason: entities.ReasonMissionInactive}, nil
	}

	if mission.HasDailyLimit() {
		count, err := s.completionRepo.CountSince(ctx, userID, mission.ID, s.startOfToday())
		if err != nil {
			return nil, fmt.Errorf("failed to count today's completions: %w", err)
		}
		if mission.LimitReached(count) {
			return &entities.Eligibility{Allowed: false, Reason: entities.ReasonDailyLimitReached}, nil
		}
	}

	return &entities.Eligibility{Allowed: true}, nil
}

func (s *missionService) startOfToday() time.Time {
	return utils.StartOfDay(s.clock(), s.location)
}
