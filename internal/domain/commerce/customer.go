// Package commerce holds the synchronized commerce entities: customers,
// products and orders as pulled from each tenant's store. Every entity is
// keyed by (tenant_id, external_id), where external_id is the identifier
// assigned by the remote platform.
package commerce

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsync/backend/internal/domain/shared"
)

// Customer represents a store customer owned by a single tenant
type Customer struct {
	shared.BaseEntity
	TenantID   uuid.UUID
	ExternalID string
	FirstName  string
	LastName   string
	Email      string
	TotalSpent decimal.Decimal
}

// NewCustomer creates a customer owned by the given tenant
func NewCustomer(tenantID uuid.UUID, externalID string) (*Customer, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID is required")
	}
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID is required")
	}
	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ExternalID: externalID,
		TotalSpent: decimal.Zero,
	}, nil
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// ApplyProfile replaces the mutable profile fields from a fresh pull
func (c *Customer) ApplyProfile(firstName, lastName, email string, totalSpent decimal.Decimal) {
	c.FirstName = firstName
	c.LastName = lastName
	c.Email = email
	c.TotalSpent = totalSpent
	c.UpdatedAt = time.Now()
}
