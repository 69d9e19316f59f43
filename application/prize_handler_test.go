package application_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"rewards/application"
	"rewards/domain/entities"
	"rewards/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countType(entries []*entities.LedgerEntry, txType entities.TransactionType) int {
	count := 0
	for _, entry := range entries {
		if entry.TransactionType == txType {
			count++
		}
	}
	return count
}

func TestPrizeHandler_PitySequence(t *testing.T) {
	t.Parallel()

	h := newHarness(t, services.AccountSettings{})
	h.seedCatalog(t, 1, 5, 1)
	h.openAccount(t, "alice", 0, 5)
	prizes := application.NewPrizeHandler(h.deps)
	ctx := context.Background()

	var counts []int
	var triggered []bool
	for i := 0; i < 5; i++ {
		result, err := prizes.EnterPrize(ctx, "alice", testPrizeID, "")
		require.NoError(t, err)
		triggered = append(triggered, result.PityTriggered)

		status, err := prizes.GetPityStatus(ctx, "alice", testPrizeID)
		require.NoError(t, err)
		assert.Equal(t, 5, status.Threshold)
		counts = append(counts, status.CurrentCount)
	}

	assert.Equal(t, []int{1, 2, 3, 4, 0}, counts)
	assert.Equal(t, []bool{false, false, false, false, true}, triggered)

	entries := h.history(t, "alice", nil)
	assert.Equal(t, 1, countType(entries, entities.TransactionTypePrizePity))
	assert.Equal(t, 5, countType(entries, entities.TransactionTypePrizeEntry))

	balance, err := application.NewWalletHandler(h.deps).GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.Balance{Points: 100, Tickets: 0}, *balance)

	history, err := prizes.GetEntryHistory(ctx, "alice", 10, 0)
	require.NoError(t, err)
	assert.Len(t, history, 5)
}

func TestPrizeHandler_RetryAfterConflictPaysOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t, services.AccountSettings{})
	h.seedCatalog(t, 1, 1, 1)
	h.openAccount(t, "alice", 0, 3)
	prizes := application.NewPrizeHandler(h.deps)
	ctx := context.Background()

	h.store.FailNextCommits(entities.ErrTransactionConflict)

	result, err := prizes.EnterPrize(ctx, "alice", testPrizeID, "req-1")
	require.NoError(t, err)
	assert.True(t, result.PityTriggered)
	assert.False(t, result.Replayed)
	assert.Equal(t, 1, h.metrics.retryCount())

	replay, err := prizes.EnterPrize(ctx, "alice", testPrizeID, "req-1")
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, result.Entry.ID, replay.Entry.ID)

	entries := h.history(t, "alice", nil)
	assert.Equal(t, 1, countType(entries, entities.TransactionTypePrizePity))
	assert.Equal(t, 1, countType(entries, entities.TransactionTypePrizeEntry))

	balance, err := application.NewWalletHandler(h.deps).GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.Balance{Points: 100, Tickets: 2}, *balance)
}

func TestPrizeHandler_RewardCreditFailurePaysOnceOnRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		failure      error
		wantFirstErr bool
	}{
		{name: "storage failure surfaces and caller retries", failure: entities.ErrStorageUnavailable, wantFirstErr: true},
		{name: "conflict retried by the handler", failure: entities.ErrTransactionConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, services.AccountSettings{})
			h.seedCatalog(t, 1, 2, 1)
			h.openAccount(t, "alice", 0, 3)
			prizes := application.NewPrizeHandler(h.deps)
			ctx := context.Background()

			_, err := prizes.EnterPrize(ctx, "alice", testPrizeID, "req-1")
			require.NoError(t, err)

			// The counter reaches the threshold, then the reward credit fails
			h.store.FailNextAppends(entities.TransactionTypePrizePity, tt.failure)

			result, err := prizes.EnterPrize(ctx, "alice", testPrizeID, "req-2")
			if tt.wantFirstErr {
				require.ErrorIs(t, err, tt.failure)

				status, err := prizes.GetPityStatus(ctx, "alice", testPrizeID)
				require.NoError(t, err)
				assert.Equal(t, 1, status.CurrentCount)
				assert.Zero(t, countType(h.history(t, "alice", nil), entities.TransactionTypePrizePity))

				result, err = prizes.EnterPrize(ctx, "alice", testPrizeID, "req-2")
			}
			require.NoError(t, err)
			assert.True(t, result.PityTriggered)
			assert.False(t, result.Replayed)

			replay, err := prizes.EnterPrize(ctx, "alice", testPrizeID, "req-2")
			require.NoError(t, err)
			assert.True(t, replay.Replayed)

			status, err := prizes.GetPityStatus(ctx, "alice", testPrizeID)
			require.NoError(t, err)
			assert.Zero(t, status.CurrentCount)

			entries := h.history(t, "alice", nil)
			assert.Equal(t, 1, countType(entries, entities.TransactionTypePrizePity))
			assert.Equal(t, 2, countType(entries, entities.TransactionTypePrizeEntry))

			balance, err := application.NewWalletHandler(h.deps).GetBalance(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, entities.Balance{Points: 100, Tickets: 1}, *balance)
		})
	}
}

func TestPrizeHandler_ConcurrentSameRequestID(t *testing.T) {
	t.Parallel()

	h := newHarness(t, services.AccountSettings{})
	h.seedCatalog(t, 1, 5, 1)
	h.openAccount(t, "alice", 0, 5)
	prizes := application.NewPrizeHandler(h.deps)

	var wg sync.WaitGroup
	results := make([]*entities.PrizeEntryResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := prizes.EnterPrize(context.Background(), "alice", testPrizeID, "same-key")
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	created := 0
	for _, result := range results {
		require.NotNil(t, result)
		if !result.Replayed {
			created++
		}
	}
	assert.Equal(t, 1, created)

	balance, err := application.NewWalletHandler(h.deps).GetBalance(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance.Tickets)
}

func TestPrizeHandler_ConcurrentEntriesCrossThresholdOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t, services.AccountSettings{})
	h.seedCatalog(t, 1, 3, 1)
	h.openAccount(t, "alice", 0, 4)
	prizes := application.NewPrizeHandler(h.deps)
	ctx := context.Background()

	for _, key := range []string{"warmup-1", "warmup-2"} {
		_, err := prizes.EnterPrize(ctx, "alice", testPrizeID, key)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make([]*entities.PrizeEntryResult, 2)
	errs := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = prizes.EnterPrize(ctx, "alice", testPrizeID, fmt.Sprintf("race-%d", i))
		}(i)
	}
	wg.Wait()

	triggered := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].PityTriggered {
			triggered++
		}
	}
	assert.Equal(t, 1, triggered)

	status, err := prizes.GetPityStatus(ctx, "alice", testPrizeID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.CurrentCount)

	entries := h.history(t, "alice", nil)
	assert.Equal(t, 1, countType(entries, entities.TransactionTypePrizePity))

	balance, err := application.NewWalletHandler(h.deps).GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.Balance{Points: 100, Tickets: 0}, *balance)
}

func TestPrizeHandler_Errors(t *testing.T) {
	t.Parallel()

	h := newHarness(t, services.AccountSettings{})
	h.seedCatalog(t, 1, 5, 1)
	h.openAccount(t, "alice", 0, 0)
	prizes := application.NewPrizeHandler(h.deps)
	ctx := context.Background()

	_, err := prizes.EnterPrize(ctx, "alice", testPrizeID, "")
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)

	_, err = prizes.EnterPrize(ctx, "alice", "missing", "")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	_, err = prizes.EnterPrize(ctx, "ghost", testPrizeID, "")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	status, err := prizes.GetPityStatus(ctx, "alice", testPrizeID)
	require.NoError(t, err)
	assert.Zero(t, status.CurrentCount)

	list, err := prizes.ListPrizes(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Zero(t, list[0].PityPercentage)
}
