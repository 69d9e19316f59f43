package entities

import (
	"encoding/json"
	"time"
)

// MissionType describes what the user does to complete a mission
type MissionType string

const (
	MissionTypeDailyAttendance  MissionType = "daily_attendance"
	MissionTypeWatchAd          MissionType = "watch_ad"
	MissionTypeReferral         MissionType = "referral"
	MissionTypeMinigameSpelling MissionType = "minigame_spelling"
	MissionTypeMinigameNumber   MissionType = "minigame_number"
	MissionTypeMinigameColor    MissionType = "minigame_color"
	MissionTypeMinigameFlag     MissionType = "minigame_flag"
	MissionTypeMinigameReaction MissionType = "minigame_reaction"
	MissionTypeMinigameDecibel  MissionType = "minigame_decibel"
)

// Mission is reference data describing a repeatable rewarded task
type Mission struct {
	ID             string      `db:"id" json:"id"`
	Title          string      `db:"title" json:"title"`
	MissionType    MissionType `db:"mission_type" json:"mission_type"`
	IsActive       bool        `db:"is_active" json:"is_active"`
	DailyLimit     *int        `db:"daily_limit" json:"daily_limit,omitempty"`
	RewardAmount   int64       `db:"reward_amount" json:"reward_amount"`
	RewardCurrency Currency    `db:"reward_currency" json:"reward_currency"`
	DisplayOrder   int         `db:"display_order" json:"display_order"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// HasDailyLimit returns true if completions per day are capped
func (m *Mission) HasDailyLimit() bool {
	return m.DailyLimit != nil
}

// LimitReached reports whether todayCount completions exhaust the daily limit
func (m *Mission) LimitReached(todayCount int) bool {
	return m.HasDailyLimit() && todayCount >= *m.DailyLimit
}

// MissionCompletion records one completion of a mission by a user
type MissionCompletion struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	MissionID   string          `db:"mission_id" json:"mission_id"`
	CompletedAt time.Time       `db:"completed_at" json:"completed_at"`
	ResultData  json.RawMessage `db:"result_data" json:"result_data,omitempty"`
}

// Eligibility is the outcome of the daily-limit gate
type Eligibility struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Reasons reported by the mission gate
const (
	ReasonMissionInactive   = "mission is not active"
	ReasonDailyLimitReached = "daily completion limit reached"
)

// MissionProgress pairs a mission with the user's completions for the current day
type MissionProgress struct {
	Mission
	TodayCompletionCount int  `json:"today_completion_count"`
	CanComplete          bool `json:"can_complete"`
}
