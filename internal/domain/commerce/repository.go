package commerce

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrendPoint is one day of aggregated order activity for a tenant
type TrendPoint struct {
	Date    string          `json:"date"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// Upsert inserts the customer or, if a row with the same
	// (tenant_id, external_id) already exists, overwrites its profile fields
	Upsert(ctx context.Context, customer *Customer) error

	// FindByExternalID finds a customer within the tenant by its remote ID
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Customer, error)

	// CountForTenant counts the tenant's customers
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// TopBySpend returns the tenant's highest spending customers
	TopBySpend(ctx context.Context, tenantID uuid.UUID, limit int) ([]Customer, error)

	// DeleteForTenant removes all customers owned by the tenant
	DeleteForTenant(ctx context.Context, tenantID uuid.UUID) error
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Upsert inserts the product or, if a row with the same
	// (tenant_id, external_id) already exists, overwrites its listing fields
	Upsert(ctx context.Context, product *Product) error

	// FindByExternalID finds a product within the tenant by its remote ID
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Product, error)

	// CountForTenant counts the tenant's products
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// DeleteForTenant removes all products owned by the tenant
	DeleteForTenant(ctx context.Context, tenantID uuid.UUID) error
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Upsert inserts the order or, if a row with the same
	// (tenant_id, external_id) already exists, overwrites its detail fields
	Upsert(ctx context.Context, order *Order) error

	// FindByExternalID finds an order within the tenant by its remote ID
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Order, error)

	// CountForTenant counts the tenant's orders
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// RevenueForTenant sums order totals for the tenant
	RevenueForTenant(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)

	// DailyTrend aggregates the tenant's orders per day since the given time
	DailyTrend(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]TrendPoint, error)

	// DeleteForTenant removes all orders owned by the tenant
	DeleteForTenant(ctx context.Context, tenantID uuid.UUID) error
}
