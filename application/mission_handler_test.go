package application_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"rewards/application"
	"rewards/domain/entities"
	"rewards/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissionHandler_DailyLimitResetsNextDay(t *testing.T) {
	t.Parallel()

	h := newHarness(t, services.AccountSettings{})
	h.seedCatalog(t, 2, 5, 1)
	h.openAccount(t, "alice", 0, 0)
	missions := application.NewMissionHandler(h.deps)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		entry, err := missions.CompleteMission(ctx, "alice", testMissionID, json.RawMessage(`{"score":1}`))
		require.NoError(t, err)
		assert.Equal(t, entities.TransactionTypeMissionReward, entry.TransactionType)
	}

	_, err := missions.CompleteMission(ctx, "alice", testMissionID, nil)
	assert.ErrorIs(t, err, entities.ErrMissionNotAllowed)

	eligibility, err := missions.CanComplete(ctx, "alice", testMissionID)
	require.NoError(t, err)
	assert.False(t, eligibility.Allowed)
	assert.Equal(t, entities.ReasonDailyLimitReached, eligibility.Reason)

	h.advance(24 * time.Hour)

	eligibility, err = missions.CanComplete(ctx, "alice", testMissionID)
	require.NoError(t, err)
	assert.True(t, eligibility.Allowed)

	_, err = missions.CompleteMission(ctx, "alice", testMissionID, nil)
	require.NoError(t, err)

	progress, err := missions.ListMissions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 1, progress[0].TodayCompletionCount)
	assert.True(t, progress[0].CanComplete)

	balance, err := application.NewWalletHandler(h.deps).GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance.Points)
}

func TestMissionHandler_RejectedCompletionLeavesNoTrace(t *testing.T) {
	t.Parallel()

	h := newHarness(t, services.AccountSettings{})
	h.seedCatalog(t, 1, 5, 1)
	h.openAccount(t, "alice", 0, 0)
	missions := application.NewMissionHandler(h.deps)
	ctx := context.Background()

	_, err := missions.CompleteMission(ctx, "alice", testMissionID, nil)
	require.NoError(t, err)
	_, err = missions.CompleteMission(ctx, "alice", testMissionID, nil)
	require.ErrorIs(t, err, entities.ErrMissionNotAllowed)

	assert.Len(t, h.history(t, "alice", nil), 1)
}
