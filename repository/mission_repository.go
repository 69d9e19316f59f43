package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewards/database"
	"rewards/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const missionColumns = `id, title, mission_type, is_active, daily_limit, reward_amount, reward_currency, display_order, created_at, updated_at`

// MissionRepository implements the MissionRepository interface
type MissionRepository struct {
	q Queryable
}

// NewMissionRepository creates a new mission repository
func NewMissionRepository(db *database.DB) *MissionRepository {
	return &MissionRepository{q: db.Pool}
}

// NewMissionRepositoryScoped creates a new mission repository bound to a transaction
func NewMissionRepositoryScoped(tx Queryable) *MissionRepository {
	return &MissionRepository{q: tx}
}

// GetByID retrieves a mission by ID
func (r *MissionRepository) GetByID(ctx context.Context, id string) (*entities.Mission, error) {
	query := `SELECT ` + missionColumns + ` FROM missions WHERE id = $1`

	mission, err := scanMission(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mission %s: %w", id, database.StorageError(err))
	}
	return mission, nil
}

// ListActive returns active missions in display order
func (r *MissionRepository) ListActive(ctx context.Context) ([]*entities.Mission, error) {
	query := `SELECT ` + missionColumns + ` FROM missions WHERE is_active ORDER BY display_order, id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", database.StorageError(err))
	}
	defer rows.Close()

	missions := make([]*entities.Mission, 0)
	for rows.Next() {
		mission, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}
		missions = append(missions, mission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating missions: %w", database.StorageError(err))
	}
	return missions, nil
}

// Upsert creates or replaces a mission definition
func (r *MissionRepository) Upsert(ctx context.Context, mission *entities.Mission) error {
	if mission.ID == "" {
		mission.ID = uuid.NewString()
	}

	query := `
		INSERT INTO missions (id, title, mission_type, is_active, daily_limit, reward_amount, reward_currency, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			mission_type = EXCLUDED.mission_type,
			is_active = EXCLUDED.is_active,
			daily_limit = EXCLUDED.daily_limit,
			reward_amount = EXCLUDED.reward_amount,
			reward_currency = EXCLUDED.reward_currency,
			display_order = EXCLUDED.display_order,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		mission.ID,
		mission.Title,
		string(mission.MissionType),
		mission.IsActive,
		mission.DailyLimit,
		mission.RewardAmount,
		string(mission.RewardCurrency),
		mission.DisplayOrder,
	).Scan(&mission.CreatedAt, &mission.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert mission %s: %w", mission.ID, database.StorageError(err))
	}
	return nil
}

func scanMission(row pgx.Row) (*entities.Mission, error) {
	var mission entities.Mission
	var missionType, currency string
	err := row.Scan(
		&mission.ID,
		&mission.Title,
		&missionType,
		&mission.IsActive,
		&mission.DailyLimit,
		&mission.RewardAmount,
		&currency,
		&mission.DisplayOrder,
		&mission.CreatedAt,
		&mission.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	mission.MissionType = entities.MissionType(missionType)
	mission.RewardCurrency = entities.Currency(currency)
	return &mission, nil
}

// MissionCompletionRepository implements the MissionCompletionRepository interface
type MissionCompletionRepository struct {
	q Queryable
}

// NewMissionCompletionRepository creates a new mission completion repository
func NewMissionCompletionRepository(db *database.DB) *MissionCompletionRepository {
	return &MissionCompletionRepository{q: db.Pool}
}

// NewMissionCompletionRepositoryScoped creates a new mission completion repository bound to a transaction
func NewMissionCompletionRepositoryScoped(tx Queryable) *MissionCompletionRepository {
	return &MissionCompletionRepository{q: tx}
}

// Create records a completion
func (r *MissionCompletionRepository) Create(ctx context.Context, completion *entities.MissionCompletion) error {
	if completion.ID == "" {
		completion.ID = uuid.NewString()
	}
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = time.Now().UTC()
	}

	resultData := "{}"
	if len(completion.ResultData) > 0 {
		resultData = string(completion.ResultData)
	}

	query := `
		INSERT INTO mission_completions (id, user_id, mission_id, completed_at, result_data)
		VALUES ($1, $2, $3, $4, $5::jsonb)
	`
	_, err := r.q.Exec(ctx, query, completion.ID, completion.UserID, completion.MissionID, completion.CompletedAt, resultData)
	if err != nil {
		return fmt.Errorf("failed to create mission completion: %w", database.StorageError(err))
	}
	return nil
}

// CountSince counts completions of one mission by a user at or after since
func (r *MissionCompletionRepository) CountSince(ctx context.Context, userID, missionID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM mission_completions
		WHERE user_id = $1 AND mission_id = $2 AND completed_at >= $3
	`
	var count int
	if err := r.q.QueryRow(ctx, query, userID, missionID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count mission completions: %w", database.StorageError(err))
	}
	return count, nil
}

// CountByMissionSince counts completions by a user at or after since, keyed by mission
func (r *MissionCompletionRepository) CountByMissionSince(ctx context.Context, userID string, since time.Time) (map[string]int, error) {
	query := `
		SELECT mission_id, COUNT(*)
		FROM mission_completions
		WHERE user_id = $1 AND completed_at >= $2
		GROUP BY mission_id
	`
	rows, err := r.q.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count mission completions: %w", database.StorageError(err))
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var missionID string
		var count int
		if err := rows.Scan(&missionID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan completion count: %w", err)
		}
		counts[missionID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completion counts: %w", database.StorageError(err))
	}
	return counts, nil
}
