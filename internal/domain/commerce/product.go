package commerce

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsync/backend/internal/domain/shared"
)

// Product represents a store product owned by a single tenant
type Product struct {
	shared.BaseEntity
	TenantID   uuid.UUID
	ExternalID string
	Title      string
	Price      decimal.Decimal
}

// NewProduct creates a product owned by the given tenant
func NewProduct(tenantID uuid.UUID, externalID string) (*Product, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID is required")
	}
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID is required")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ExternalID: externalID,
		Price:      decimal.Zero,
	}, nil
}

// ApplyListing replaces the mutable listing fields from a fresh pull
func (p *Product) ApplyListing(title string, price decimal.Decimal) {
	p.Title = title
	p.Price = price
	p.UpdatedAt = time.Now()
}
