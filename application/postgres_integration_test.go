package application_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"rewards/application"
	"rewards/domain/entities"
	"rewards/infrastructure"
	"rewards/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postgresDependencies(t *testing.T) application.Dependencies {
	t.Helper()

	testDB := testutil.SetupTestDatabase(t)
	publisher := infrastructure.NewNATSEventPublisher(nil, infrastructure.NewEventSubjectMapper())
	return application.Dependencies{
		UnitOfWorkFactory: infrastructure.NewUnitOfWorkFactory(testDB.DB, publisher),
		Location:          time.UTC,
		Retry:             application.DefaultRetryPolicy(5),
	}
}

func TestPostgres_ConcurrentDebits(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	deps := postgresDependencies(t)
	ctx := context.Background()

	_, err := application.NewAccountHandler(deps).OpenAccount(ctx, "alice", "alice")
	require.NoError(t, err)
	wallet := application.NewWalletHandler(deps)
	_, err = wallet.AdjustBalance(ctx, "alice", entities.CurrencyPoints, 10, "funding")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = wallet.AdjustBalance(ctx, "alice", entities.CurrencyPoints, -6, "spend")
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	balance, err := wallet.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance.Points)
}

func TestPostgres_PitySequence(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	deps := postgresDependencies(t)
	ctx := context.Background()

	require.NoError(t, application.NewCatalogHandler(deps).Upsert(ctx, application.Catalog{
		Prizes: []*entities.Prize{testutil.CreateTestPrize("console", 5)},
	}))
	_, err := application.NewAccountHandler(deps).OpenAccount(ctx, "alice", "alice")
	require.NoError(t, err)
	_, err = application.NewWalletHandler(deps).AdjustBalance(ctx, "alice", entities.CurrencyTickets, 5, "funding")
	require.NoError(t, err)

	prizes := application.NewPrizeHandler(deps)
	var counts []int
	for i := 0; i < 5; i++ {
		_, err := prizes.EnterPrize(ctx, "alice", "console", "")
		require.NoError(t, err)
		status, err := prizes.GetPityStatus(ctx, "alice", "console")
		require.NoError(t, err)
		counts = append(counts, status.CurrentCount)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 0}, counts)

	history, err := application.NewWalletHandler(deps).GetTransactionHistory(ctx, "alice", nil, 100, 0)
	require.NoError(t, err)
	pity := 0
	for _, entry := range history {
		if entry.TransactionType == entities.TransactionTypePrizePity {
			pity++
		}
	}
	assert.Equal(t, 1, pity)
}

func TestPostgres_ConcurrentEntriesCrossThresholdOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	deps := postgresDependencies(t)
	ctx := context.Background()

	require.NoError(t, application.NewCatalogHandler(deps).Upsert(ctx, application.Catalog{
		Prizes: []*entities.Prize{testutil.CreateTestPrize("console", 3)},
	}))
	_, err := application.NewAccountHandler(deps).OpenAccount(ctx, "alice", "alice")
	require.NoError(t, err)
	wallet := application.NewWalletHandler(deps)
	_, err = wallet.AdjustBalance(ctx, "alice", entities.CurrencyTickets, 4, "funding")
	require.NoError(t, err)

	prizes := application.NewPrizeHandler(deps)
	for _, key := range []string{"warmup-1", "warmup-2"} {
		_, err := prizes.EnterPrize(ctx, "alice", "console", key)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make([]*entities.PrizeEntryResult, 2)
	errs := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = prizes.EnterPrize(ctx, "alice", "console", fmt.Sprintf("race-%d", i))
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

	status, err := prizes.GetPityStatus(ctx, "alice", "console")
	require.NoError(t, err)
	assert.Equal(t, 1, status.CurrentCount)

	history, err := wallet.GetTransactionHistory(ctx, "alice", nil, 100, 0)
	require.NoError(t, err)
	pity := 0
	for _, entry := range history {
		if entry.TransactionType == entities.TransactionTypePrizePity {
			pity++
		}
	}
	assert.Equal(t, 1, pity)

	balance, err := wallet.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.Balance{Points: 100, Tickets: 0}, *balance)
}
