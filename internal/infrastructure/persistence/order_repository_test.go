package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsync/backend/internal/domain/commerce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, tenantID uuid.UUID, externalID, total string, placedAt time.Time) *commerce.Order {
	t.Helper()
	o, err := commerce.NewOrder(tenantID, externalID)
	require.NoError(t, err)
	o.ApplyDetails(decimal.RequireFromString(total), "USD", nil, placedAt)
	return o
}

func TestGormOrderRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	placedAt := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	t.Run("insert with dangling customer reference", func(t *testing.T) {
		// Orders can point at customers that have not been pulled yet
		custRef := "99"
		o, err := commerce.NewOrder(tenantID, "5001")
		require.NoError(t, err)
		o.ApplyDetails(decimal.RequireFromString("42.50"), "USD", &custRef, placedAt)

		require.NoError(t, repo.Upsert(ctx, o))

		found, err := repo.FindByExternalID(ctx, tenantID, "5001")
		require.NoError(t, err)
		require.NotNil(t, found.CustomerExternalID)
		assert.Equal(t, "99", *found.CustomerExternalID)
	})

	t.Run("repeated upsert is idempotent", func(t *testing.T) {
		o := newTestOrder(t, tenantID, "5001", "45.00", placedAt)
		require.NoError(t, repo.Upsert(ctx, o))
		require.NoError(t, repo.Upsert(ctx, o))

		count, err := repo.CountForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		found, err := repo.FindByExternalID(ctx, tenantID, "5001")
		require.NoError(t, err)
		assert.True(t, found.Total.Equal(decimal.RequireFromString("45.00")))
		assert.Nil(t, found.CustomerExternalID)
	})
}

func TestGormOrderRepository_RevenueForTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	placedAt := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	t.Run("empty tenant sums to zero", func(t *testing.T) {
		revenue, err := repo.RevenueForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.True(t, revenue.IsZero())
	})

	require.NoError(t, repo.Upsert(ctx, newTestOrder(t, tenantID, "1", "10.50", placedAt)))
	require.NoError(t, repo.Upsert(ctx, newTestOrder(t, tenantID, "2", "20.00", placedAt)))
	require.NoError(t, repo.Upsert(ctx, newTestOrder(t, uuid.New(), "1", "500.00", placedAt)))

	revenue, err := repo.RevenueForTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.RequireFromString("30.5")), "got %s", revenue)
}

func TestGormOrderRepository_DailyTrend(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	day1 := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 11, 15, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, newTestOrder(t, tenantID, "1", "10.00", day1)))
	require.NoError(t, repo.Upsert(ctx, newTestOrder(t, tenantID, "2", "15.00", day1)))
	require.NoError(t, repo.Upsert(ctx, newTestOrder(t, tenantID, "3", "7.00", day2)))

	points, err := repo.DailyTrend(ctx, tenantID, day1.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, int64(2), points[0].Orders)
	assert.True(t, points[0].Revenue.Equal(decimal.RequireFromString("25")))
	assert.Equal(t, int64(1), points[1].Orders)

	t.Run("since filter excludes older days", func(t *testing.T) {
		points, err := repo.DailyTrend(ctx, tenantID, day2.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, int64(1), points[0].Orders)
	})
}
