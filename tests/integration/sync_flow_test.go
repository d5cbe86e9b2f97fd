package integration

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityapp "github.com/shopsync/backend/internal/application/identity"
	ingestionapp "github.com/shopsync/backend/internal/application/ingestion"
	reportapp "github.com/shopsync/backend/internal/application/report"
	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/infrastructure/persistence"
)

// pagedPlatform serves canned pages, two records per page, so the pull loop
// has to follow cursors.
type pagedPlatform struct {
	customers []ingestion.CustomerRecord
	products  []ingestion.ProductRecord
	orders    []ingestion.OrderRecord
	ordersErr error
}

func (p *pagedPlatform) FetchCustomers(_ context.Context, cursor string) (*ingestion.CustomerPage, error) {
	records, next := pageOf(p.customers, cursor)
	return &ingestion.CustomerPage{Customers: records, Cursor: next, Raw: []byte(`{}`)}, nil
}

func (p *pagedPlatform) FetchProducts(_ context.Context, cursor string) (*ingestion.ProductPage, error) {
	records, next := pageOf(p.products, cursor)
	return &ingestion.ProductPage{Products: records, Cursor: next, Raw: []byte(`{}`)}, nil
}

func (p *pagedPlatform) FetchOrders(_ context.Context, cursor string) (*ingestion.OrderPage, error) {
	if p.ordersErr != nil {
		return nil, p.ordersErr
	}
	records, next := pageOf(p.orders, cursor)
	return &ingestion.OrderPage{Orders: records, Cursor: next, Raw: []byte(`{}`)}, nil
}

// pageOf slices out one page. The cursor is the decimal offset of the next
// page, empty on the last one.
func pageOf[T any](records []T, cursor string) ([]T, string) {
	const pageSize = 2

	start := 0
	if cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	end := start + pageSize
	if end >= len(records) {
		return records[start:], ""
	}
	return records[start:end], strconv.Itoa(end)
}

type syncFlowSetup struct {
	DB            *TestDB
	TenantService *identityapp.TenantServiceImpl
	SyncService   *ingestionapp.SyncServiceImpl
	Dashboard     *reportapp.DashboardServiceImpl
	Platform      *pagedPlatform
}

func newSyncFlowSetup(t *testing.T) *syncFlowSetup {
	t.Helper()

	testDB := NewTestDB(t)

	tenantRepo := persistence.NewGormTenantRepository(testDB.DB)
	customerRepo := persistence.NewGormCustomerRepository(testDB.DB)
	productRepo := persistence.NewGormProductRepository(testDB.DB)
	orderRepo := persistence.NewGormOrderRepository(testDB.DB)

	platform := &pagedPlatform{
		customers: []ingestion.CustomerRecord{
			{ExternalID: "c1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.test", TotalSpent: decimal.RequireFromString("120.00")},
			{ExternalID: "c2", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.test", TotalSpent: decimal.RequireFromString("80.00")},
			{ExternalID: "c3", FirstName: "Edsger", LastName: "Dijkstra", Email: "edsger@example.test", TotalSpent: decimal.RequireFromString("45.00")},
		},
		products: []ingestion.ProductRecord{
			{ExternalID: "p1", Title: "Widget", Price: decimal.RequireFromString("19.99")},
			{ExternalID: "p2", Title: "Gadget", Price: decimal.RequireFromString("29.99")},
		},
		orders: []ingestion.OrderRecord{
			{ExternalID: "o1", Total: decimal.RequireFromString("49.98"), Currency: "USD", PlacedAt: time.Now().UTC()},
			{ExternalID: "o2", Total: decimal.RequireFromString("19.99"), Currency: "USD", PlacedAt: time.Now().UTC().Add(-24 * time.Hour)},
		},
	}
	factory := func(shopDomain, accessToken string) ingestion.Platform { return platform }

	tenantService := identityapp.NewTenantService(tenantRepo, customerRepo, productRepo, orderRepo, nil)
	upserter := ingestionapp.NewUpserter(customerRepo, productRepo, orderRepo, nil)
	syncService := ingestionapp.NewSyncService(tenantRepo, factory, upserter, ingestionapp.NewTenantGuard(), nil, nil)
	dashboard := reportapp.NewDashboardService(customerRepo, productRepo, orderRepo, nil, nil)

	return &syncFlowSetup{
		DB:            testDB,
		TenantService: tenantService,
		SyncService:   syncService,
		Dashboard:     dashboard,
		Platform:      platform,
	}
}

func TestSyncFlow_FullRun(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := newSyncFlowSetup(t)
	ctx := context.Background()

	tenant, err := setup.TenantService.OnboardTenant(ctx, "Flow Store", "owner@flow.test", "flow.myshopify.com", "shpat_flow")
	require.NoError(t, err)
	require.Nil(t, tenant.LastSyncAt)

	summary, err := setup.SyncService.StartSync(ctx, tenant.ID, ingestionapp.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Customers)
	assert.Equal(t, 2, summary.Products)
	assert.Equal(t, 2, summary.Orders)

	// The sync stamp lands on the tenant
	synced, err := setup.TenantService.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.NotNil(t, synced.LastSyncAt)

	// Dashboard aggregates reflect the pulled data
	stats, err := setup.Dashboard.Stats(ctx, tenant.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Customers)
	assert.EqualValues(t, 2, stats.Products)
	assert.EqualValues(t, 2, stats.Orders)
	assert.True(t, stats.Revenue.Equal(decimal.RequireFromString("69.97")), "got revenue %s", stats.Revenue)

	top, err := setup.Dashboard.TopCustomers(ctx, tenant.ID, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "c1", top[0].ExternalID)

	// Run history records the completed run
	runs := setup.SyncService.History(tenant.ID, 10)
	require.Len(t, runs, 1)
	assert.Equal(t, ingestionapp.RunStatusSucceeded, runs[0].Status)
	assert.Equal(t, 7, runs[0].Summary.Total())
}

func TestSyncFlow_RerunIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := newSyncFlowSetup(t)
	ctx := context.Background()

	tenant, err := setup.TenantService.OnboardTenant(ctx, "Rerun Store", "owner@rerun.test", "rerun.myshopify.com", "shpat_rerun")
	require.NoError(t, err)

	_, err = setup.SyncService.StartSync(ctx, tenant.ID, ingestionapp.TriggerManual)
	require.NoError(t, err)

	// Second run pulls the same records; upserts keep the row count stable
	_, err = setup.SyncService.StartSync(ctx, tenant.ID, ingestionapp.TriggerScheduled)
	require.NoError(t, err)

	stats, err := setup.Dashboard.Stats(ctx, tenant.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Customers)
	assert.EqualValues(t, 2, stats.Products)
	assert.EqualValues(t, 2, stats.Orders)
}

func TestSyncFlow_PartialFailureKeepsCompletedStages(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := newSyncFlowSetup(t)
	ctx := context.Background()

	tenant, err := setup.TenantService.OnboardTenant(ctx, "Partial Store", "owner@partial.test", "partial.myshopify.com", "shpat_partial")
	require.NoError(t, err)

	setup.Platform.ordersErr = ingestion.ErrPlatformUnavailable

	_, err = setup.SyncService.StartSync(ctx, tenant.ID, ingestionapp.TriggerManual)
	require.Error(t, err)

	var syncErr *ingestion.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, ingestion.EntityOrders, syncErr.Stage)
	assert.Equal(t, 3, syncErr.Partial.Customers)
	assert.Equal(t, 2, syncErr.Partial.Products)

	// Customers and products pulled before the failure are kept
	stats, err := setup.Dashboard.Stats(ctx, tenant.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Customers)
	assert.EqualValues(t, 2, stats.Products)
	assert.EqualValues(t, 0, stats.Orders)

	// A failed run does not stamp the tenant
	unsynced, err := setup.TenantService.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Nil(t, unsynced.LastSyncAt)

	// The failure clears; the next run completes
	setup.Platform.ordersErr = nil
	summary, err := setup.SyncService.StartSync(ctx, tenant.ID, ingestionapp.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Orders)
}

func TestSyncFlow_SuspendedTenantRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := newSyncFlowSetup(t)
	ctx := context.Background()

	tenant, err := setup.TenantService.OnboardTenant(ctx, "Suspended Store", "owner@suspended.test", "suspended.myshopify.com", "shpat_susp")
	require.NoError(t, err)
	require.NoError(t, setup.TenantService.SuspendTenant(ctx, tenant.ID))

	_, err = setup.SyncService.StartSync(ctx, tenant.ID, ingestionapp.TriggerManual)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not active")
}

func TestSyncFlow_DeleteTenantPurgesData(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := newSyncFlowSetup(t)
	ctx := context.Background()

	tenant, err := setup.TenantService.OnboardTenant(ctx, "Purge Store", "owner@purge.test", "purge.myshopify.com", "shpat_purge")
	require.NoError(t, err)

	_, err = setup.SyncService.StartSync(ctx, tenant.ID, ingestionapp.TriggerManual)
	require.NoError(t, err)

	require.NoError(t, setup.TenantService.DeleteTenant(ctx, tenant.ID))

	stats, err := setup.Dashboard.Stats(ctx, tenant.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.Customers)
	assert.EqualValues(t, 0, stats.Products)
	assert.EqualValues(t, 0, stats.Orders)
}
