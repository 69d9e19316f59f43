package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"rewards/application"
	"rewards/domain/entities"
	"rewards/domain/services"
	"rewards/infrastructure"
	"rewards/repository/memstore"

	"github.com/stretchr/testify/require"
)

const (
	testPrizeID   = "console"
	testMissionID = "daily-check"
	testProductID = "gift-card"
)

// harness wires the handlers to an in-memory store with a controllable clock
type harness struct {
	mu      sync.Mutex
	now     time.Time
	store   *memstore.Store
	metrics *recordingMetrics
	deps    application.Dependencies
}

func newHarness(t *testing.T, settings services.AccountSettings) *harness {
	t.Helper()

	h := &harness{
		now:     time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		metrics: &recordingMetrics{operations: make(map[string]int)},
	}
	h.store = memstore.NewStore(h.clock)

	publisher := infrastructure.NewNATSEventPublisher(nil, infrastructure.NewEventSubjectMapper())
	h.deps = application.Dependencies{
		UnitOfWorkFactory: infrastructure.NewMemoryUnitOfWorkFactory(h.store, publisher),
		Clock:             h.clock,
		Location:          time.UTC,
		AccountSettings:   settings,
		Retry: application.RetryPolicy{
			MaxRetries:      3,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
		Metrics: h.metrics,
	}
	return h
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

// seedCatalog installs one mission, prize and product
func (h *harness) seedCatalog(t *testing.T, dailyLimit, pityThreshold, stock int) {
	t.Helper()

	err := application.NewCatalogHandler(h.deps).Upsert(context.Background(), application.Catalog{
		Missions: []*entities.Mission{{
			ID:             testMissionID,
			Title:          "Daily check-in",
			MissionType:    entities.MissionTypeDailyAttendance,
			IsActive:       true,
			DailyLimit:     &dailyLimit,
			RewardAmount:   10,
			RewardCurrency: entities.CurrencyPoints,
		}},
		Prizes: []*entities.Prize{{
			ID:                 testPrizeID,
			Name:               "Game console",
			IsActive:           true,
			TicketsPerEntry:    1,
			PityThreshold:      pityThreshold,
			PityRewardAmount:   100,
			PityRewardCurrency: entities.CurrencyPoints,
		}},
		Products: []*entities.RewardProduct{{
			ID:             testProductID,
			Name:           "Gift card",
			PointsRequired: 300,
			Stock:          &stock,
			IsActive:       true,
		}},
	})
	require.NoError(t, err)
}

// openAccount creates userID and funds it through admin adjustments
func (h *harness) openAccount(t *testing.T, userID string, points, tickets int64) *entities.Account {
	t.Helper()
	ctx := context.Background()

	account, err := application.NewAccountHandler(h.deps).OpenAccount(ctx, userID, userID)
	require.NoError(t, err)

	wallet := application.NewWalletHandler(h.deps)
	if points > 0 {
		_, err := wallet.AdjustBalance(ctx, userID, entities.CurrencyPoints, points, "test funding")
		require.NoError(t, err)
	}
	if tickets > 0 {
		_, err := wallet.AdjustBalance(ctx, userID, entities.CurrencyTickets, tickets, "test funding")
		require.NoError(t, err)
	}
	return account
}

// history returns every ledger entry of userID oldest first
func (h *harness) history(t *testing.T, userID string, currency *entities.Currency) []*entities.LedgerEntry {
	t.Helper()

	entries, err := application.NewWalletHandler(h.deps).GetTransactionHistory(context.Background(), userID, currency, services.MaxHistoryLimit, 0)
	require.NoError(t, err)

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

type recordingMetrics struct {
	mu         sync.Mutex
	retries    int
	operations map[string]int
	lastErr    error
}

func (m *recordingMetrics) RecordRetry(ctx context.Context, operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}

func (m *recordingMetrics) RecordOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[operation]++
	m.lastErr = err
}

func (m *recordingMetrics) retryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retries
}
