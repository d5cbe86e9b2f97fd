// Package ingestion defines the port through which commerce data is pulled
// from a tenant's remote store, together with the sync result types shared
// by the application layer and the HTTP interface.
package ingestion

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Platform Errors
// ---------------------------------------------------------------------------

var (
	// ErrPlatformAuthFailed covers rejected credentials (401/403). Retrying
	// with the same token cannot succeed, so callers fail the run immediately.
	ErrPlatformAuthFailed = errors.New("ingestion: platform authentication failed")

	// ErrPlatformRateLimited is returned after the retry budget for 429
	// responses has been exhausted.
	ErrPlatformRateLimited = errors.New("ingestion: platform rate limited")

	// ErrPlatformUnavailable covers network failures and 5xx responses that
	// persisted through the retry budget.
	ErrPlatformUnavailable = errors.New("ingestion: platform temporarily unavailable")

	// ErrPlatformRequestFailed covers client errors other than auth and rate
	// limiting, e.g. a 404 for a shop that does not exist.
	ErrPlatformRequestFailed = errors.New("ingestion: platform request failed")

	// ErrPlatformInvalidResponse is returned when the platform responds with
	// a payload that cannot be decoded.
	ErrPlatformInvalidResponse = errors.New("ingestion: invalid platform response")

	// ErrSyncInProgress is returned when a sync is requested for a tenant
	// that already has one running.
	ErrSyncInProgress = errors.New("ingestion: sync already in progress for tenant")
)

// ---------------------------------------------------------------------------
// EntityKind
// ---------------------------------------------------------------------------

// EntityKind identifies one of the synchronized entity collections
type EntityKind string

const (
	EntityCustomers EntityKind = "customers"
	EntityProducts  EntityKind = "products"
	EntityOrders    EntityKind = "orders"
)

// IsValid returns true if the entity kind is valid
func (k EntityKind) IsValid() bool {
	switch k {
	case EntityCustomers, EntityProducts, EntityOrders:
		return true
	}
	return false
}

// String returns the string representation
func (k EntityKind) String() string {
	return string(k)
}

// ---------------------------------------------------------------------------
// Pulled records
// ---------------------------------------------------------------------------

// CustomerRecord is a customer as returned by the remote platform
type CustomerRecord struct {
	ExternalID string
	FirstName  string
	LastName   string
	Email      string
	TotalSpent decimal.Decimal
}

// ProductRecord is a product as returned by the remote platform
type ProductRecord struct {
	ExternalID string
	Title      string
	Price      decimal.Decimal
}

// OrderRecord is an order as returned by the remote platform.
// CustomerExternalID is nil for guest checkouts.
type OrderRecord struct {
	ExternalID         string
	Total              decimal.Decimal
	Currency           string
	CustomerExternalID *string
	PlacedAt           time.Time
}

// CustomerPage is one page of pulled customers. Cursor is the opaque
// pagination token for the next page, empty on the last page. Raw holds the
// undecoded response body for archival.
type CustomerPage struct {
	Customers []CustomerRecord
	Cursor    string
	Raw       []byte
}

// ProductPage is one page of pulled products
type ProductPage struct {
	Products []ProductRecord
	Cursor   string
	Raw      []byte
}

// OrderPage is one page of pulled orders
type OrderPage struct {
	Orders []OrderRecord
	Cursor string
	Raw    []byte
}

// ---------------------------------------------------------------------------
// Platform port
// ---------------------------------------------------------------------------

// Platform is the outbound port for pulling commerce data from a tenant's
// store. Implementations are bound to a single tenant's credentials and must
// be safe for concurrent use. A cursor of "" requests the first page.
type Platform interface {
	// FetchCustomers pulls one page of customers
	FetchCustomers(ctx context.Context, cursor string) (*CustomerPage, error)

	// FetchProducts pulls one page of products
	FetchProducts(ctx context.Context, cursor string) (*ProductPage, error)

	// FetchOrders pulls one page of orders, including cancelled and closed ones
	FetchOrders(ctx context.Context, cursor string) (*OrderPage, error)
}

// PlatformFactory builds a Platform bound to one store's credentials
type PlatformFactory func(shopDomain, accessToken string) Platform
