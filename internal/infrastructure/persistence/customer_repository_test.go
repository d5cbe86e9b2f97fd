package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsync/backend/internal/domain/commerce"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T, tenantID uuid.UUID, externalID string, spent string) *commerce.Customer {
	t.Helper()
	c, err := commerce.NewCustomer(tenantID, externalID)
	require.NoError(t, err)
	c.ApplyProfile("Jane", "Doe", "jane@example.com", decimal.RequireFromString(spent))
	return c
}

func TestGormCustomerRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("insert then find", func(t *testing.T) {
		c := newTestCustomer(t, tenantID, "1001", "199.65")
		require.NoError(t, repo.Upsert(ctx, c))

		found, err := repo.FindByExternalID(ctx, tenantID, "1001")
		require.NoError(t, err)
		assert.Equal(t, "Jane", found.FirstName)
		assert.True(t, found.TotalSpent.Equal(decimal.RequireFromString("199.65")))
	})

	t.Run("repeated upsert overwrites without duplicating", func(t *testing.T) {
		updated := newTestCustomer(t, tenantID, "1001", "250.00")
		updated.FirstName = "Janet"
		require.NoError(t, repo.Upsert(ctx, updated))
		require.NoError(t, repo.Upsert(ctx, updated))

		count, err := repo.CountForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		found, err := repo.FindByExternalID(ctx, tenantID, "1001")
		require.NoError(t, err)
		assert.Equal(t, "Janet", found.FirstName)
		assert.True(t, found.TotalSpent.Equal(decimal.RequireFromString("250.00")))
	})

	t.Run("same external ID under another tenant is a separate row", func(t *testing.T) {
		otherTenant := uuid.New()
		require.NoError(t, repo.Upsert(ctx, newTestCustomer(t, otherTenant, "1001", "10.00")))

		count, err := repo.CountForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		otherCount, err := repo.CountForTenant(ctx, otherTenant)
		require.NoError(t, err)
		assert.Equal(t, int64(1), otherCount)
	})
}

func TestGormCustomerRepository_FindByExternalID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)

	_, err := repo.FindByExternalID(context.Background(), uuid.New(), "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCustomerRepository_TopBySpend(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	require.NoError(t, repo.Upsert(ctx, newTestCustomer(t, tenantID, "1", "50.00")))
	require.NoError(t, repo.Upsert(ctx, newTestCustomer(t, tenantID, "2", "300.00")))
	require.NoError(t, repo.Upsert(ctx, newTestCustomer(t, tenantID, "3", "120.00")))

	// Another tenant's big spender must not leak in
	require.NoError(t, repo.Upsert(ctx, newTestCustomer(t, uuid.New(), "99", "9999.00")))

	top, err := repo.TopBySpend(ctx, tenantID, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "2", top[0].ExternalID)
	assert.Equal(t, "3", top[1].ExternalID)
}

func TestGormCustomerRepository_DeleteForTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	otherTenant := uuid.New()

	require.NoError(t, repo.Upsert(ctx, newTestCustomer(t, tenantID, "1", "1.00")))
	require.NoError(t, repo.Upsert(ctx, newTestCustomer(t, otherTenant, "1", "1.00")))

	require.NoError(t, repo.DeleteForTenant(ctx, tenantID))

	count, err := repo.CountForTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	otherCount, err := repo.CountForTenant(ctx, otherTenant)
	require.NoError(t, err)
	assert.Equal(t, int64(1), otherCount)
}
