package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"rewards/domain/entities"
	"rewards/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissionRepository_Upsert(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMissionRepository(testDB.DB)
	ctx := context.Background()

	mission := testutil.CreateTestMission("ad", testutil.IntPtr(3))
	require.NoError(t, repo.Upsert(ctx, mission))

	found, err := repo.GetByID(ctx, "ad")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.DailyLimit)
	assert.Equal(t, 3, *found.DailyLimit)
	assert.Equal(t, entities.CurrencyPoints, found.RewardCurrency)
	assert.Equal(t, entities.MissionTypeWatchAd, found.MissionType)

	mission.DailyLimit = nil
	mission.IsActive = false
	require.NoError(t, repo.Upsert(ctx, mission))

	found, err = repo.GetByID(ctx, "ad")
	require.NoError(t, err)
	assert.Nil(t, found.DailyLimit)
	assert.False(t, found.IsActive)

	missing, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMissionRepository_ListActive(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMissionRepository(testDB.DB)
	ctx := context.Background()

	second := testutil.CreateTestMission("second", nil)
	second.DisplayOrder = 2
	first := testutil.CreateTestMission("first", nil)
	first.DisplayOrder = 1
	inactive := testutil.CreateTestMission("inactive", nil)
	inactive.IsActive = false

	for _, m := range []*entities.Mission{second, first, inactive} {
		require.NoError(t, repo.Upsert(ctx, m))
	}

	missions, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, missions, 2)
	assert.Equal(t, "first", missions[0].ID)
	assert.Equal(t, "second", missions[1].ID)
}

func TestMissionCompletionRepository_Counts(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, NewAccountRepository(testDB.DB).Create(ctx, testutil.CreateTestAccount("user-1")))
	missionRepo := NewMissionRepository(testDB.DB)
	require.NoError(t, missionRepo.Upsert(ctx, testutil.CreateTestMission("ad", testutil.IntPtr(3))))
	require.NoError(t, missionRepo.Upsert(ctx, testutil.CreateTestMission("quiz", nil)))

	repo := NewMissionCompletionRepository(testDB.DB)
	dayStart := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	completions := []*entities.MissionCompletion{
		{UserID: "user-1", MissionID: "ad", CompletedAt: dayStart.Add(-time.Minute)},
		{UserID: "user-1", MissionID: "ad", CompletedAt: dayStart},
		{UserID: "user-1", MissionID: "ad", CompletedAt: dayStart.Add(5 * time.Hour), ResultData: json.RawMessage(`{"score":7}`)},
		{UserID: "user-1", MissionID: "quiz", CompletedAt: dayStart.Add(time.Hour)},
	}
	for _, c := range completions {
		require.NoError(t, repo.Create(ctx, c))
		assert.NotEmpty(t, c.ID)
	}

	count, err := repo.CountSince(ctx, "user-1", "ad", dayStart)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	counts, err := repo.CountByMissionSince(ctx, "user-1", dayStart)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ad": 2, "quiz": 1}, counts)

	none, err := repo.CountByMissionSince(ctx, "user-1", dayStart.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)
}
