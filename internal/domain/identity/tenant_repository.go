package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopsync/backend/internal/domain/shared"
)

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// FindByID finds a tenant by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByShopDomain finds a tenant by its normalized shop domain
	FindByShopDomain(ctx context.Context, domain string) (*Tenant, error)

	// FindAll finds all tenants matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Tenant, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, tenant *Tenant) error

	// Delete deletes a tenant
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts tenants matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByShopDomain checks if a tenant with the given shop domain exists
	ExistsByShopDomain(ctx context.Context, domain string) (bool, error)
}
