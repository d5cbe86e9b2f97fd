package commerce

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsync/backend/internal/domain/shared"
)

// Order represents a store order owned by a single tenant.
// CustomerExternalID is the remote platform's customer identifier and is
// stored as given, whether or not the matching customer row exists yet.
// Customers and orders arrive in separate pulls, so the reference is not
// enforced with a foreign key.
type Order struct {
	shared.BaseEntity
	TenantID           uuid.UUID
	ExternalID         string
	Total              decimal.Decimal
	Currency           string
	CustomerExternalID *string
	PlacedAt           time.Time
}

// NewOrder creates an order owned by the given tenant
func NewOrder(tenantID uuid.UUID, externalID string) (*Order, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID is required")
	}
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID is required")
	}
	return &Order{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ExternalID: externalID,
		Total:      decimal.Zero,
	}, nil
}

// ApplyDetails replaces the mutable order fields from a fresh pull
func (o *Order) ApplyDetails(total decimal.Decimal, currency string, customerExternalID *string, placedAt time.Time) {
	o.Total = total
	o.Currency = currency
	o.CustomerExternalID = customerExternalID
	o.PlacedAt = placedAt
	o.UpdatedAt = time.Now()
}
