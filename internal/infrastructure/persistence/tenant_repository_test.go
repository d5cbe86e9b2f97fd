package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTenant(t *testing.T, domain string) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant("Acme Outdoor", "ops@acme.example", domain, "shpat_test")
	require.NoError(t, err)
	return tenant
}

func TestGormTenantRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	tenant := newTestTenant(t, "acme.myshopify.com")
	require.NoError(t, repo.Save(ctx, tenant))

	t.Run("finds by ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, found.ID)
		assert.Equal(t, "acme.myshopify.com", found.ShopDomain)
		assert.Equal(t, "shpat_test", found.AccessToken)
	})

	t.Run("finds by shop domain", func(t *testing.T) {
		found, err := repo.FindByShopDomain(ctx, "acme.myshopify.com")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, found.ID)
	})

	t.Run("unknown ID returns not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("empty domain returns not found", func(t *testing.T) {
		_, err := repo.FindByShopDomain(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTenantRepository_ExistsByShopDomain(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestTenant(t, "acme.myshopify.com")))

	exists, err := repo.ExistsByShopDomain(ctx, "acme.myshopify.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByShopDomain(ctx, "other.myshopify.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormTenantRepository_FindAllAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestTenant(t, "acme.myshopify.com")))
	require.NoError(t, repo.Save(ctx, newTestTenant(t, "globex.myshopify.com")))

	tenants, err := repo.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, tenants, 2)

	count, err := repo.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	t.Run("search filters by domain", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "globex"
		tenants, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, tenants, 1)
		assert.Equal(t, "globex.myshopify.com", tenants[0].ShopDomain)
	})
}

func TestGormTenantRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	tenant := newTestTenant(t, "acme.myshopify.com")
	require.NoError(t, repo.Save(ctx, tenant))

	require.NoError(t, repo.Delete(ctx, tenant.ID))

	_, err := repo.FindByID(ctx, tenant.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, tenant.ID), shared.ErrNotFound)
}
