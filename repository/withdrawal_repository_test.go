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

func TestRewardProductRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRewardProductRepository(testDB.DB)
	ctx := context.Background()

	limited := testutil.CreateTestProduct("coffee", 500, testutil.IntPtr(2))
	unlimited := testutil.CreateTestProduct("donation", 100, nil)
	unlimited.DisplayOrder = 1
	require.NoError(t, repo.Upsert(ctx, limited))
	require.NoError(t, repo.Upsert(ctx, unlimited))

	products, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "coffee", products[0].ID)

	require.NoError(t, repo.UpdateStock(ctx, "coffee", 1))
	product, err := repo.GetForUpdate(ctx, "coffee")
	require.NoError(t, err)
	require.NotNil(t, product.Stock)
	assert.Equal(t, 1, *product.Stock)

	err = repo.UpdateStock(ctx, "donation", 5)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	missing, err := repo.GetForUpdate(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWithdrawalRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, NewAccountRepository(testDB.DB).Create(ctx, testutil.CreateTestAccount("user-1")))
	require.NoError(t, NewRewardProductRepository(testDB.DB).Upsert(ctx, testutil.CreateTestProduct("coffee", 500, nil)))

	repo := NewWithdrawalRepository(testDB.DB)
	created := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	request := &entities.WithdrawalRequest{
		UserID:      "user-1",
		ProductID:   "coffee",
		PointsUsed:  500,
		ContactInfo: json.RawMessage(`{"phone":"010-0000-0000"}`),
		CreatedAt:   created,
	}
	require.NoError(t, repo.Create(ctx, request))
	assert.NotEmpty(t, request.ID)
	assert.Equal(t, entities.WithdrawalStatusPending, request.Status)

	locked, err := repo.GetForUpdate(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)
	assert.JSONEq(t, `{"phone":"010-0000-0000"}`, string(locked.ContactInfo))
	assert.Nil(t, locked.ProcessedAt)

	processed := created.Add(time.Hour)
	locked.Status = entities.WithdrawalStatusApproved
	locked.AdminNotes = entities.StringPtr("sent")
	locked.ProcessedAt = &processed
	locked.UpdatedAt = processed
	require.NoError(t, repo.UpdateStatus(ctx, locked))

	requests, err := repo.ListByUser(ctx, "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, entities.WithdrawalStatusApproved, requests[0].Status)
	require.NotNil(t, requests[0].AdminNotes)
	assert.Equal(t, "sent", *requests[0].AdminNotes)
	require.NotNil(t, requests[0].ProcessedAt)
	assert.True(t, processed.Equal(*requests[0].ProcessedAt))

	missing := &entities.WithdrawalRequest{ID: "missing", Status: entities.WithdrawalStatusRejected}
	assert.ErrorIs(t, repo.UpdateStatus(ctx, missing), entities.ErrNotFound)
}
