package ingestion

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/commerce"
	"github.com/shopsync/backend/internal/domain/ingestion"
)

// Upserter maps pulled platform records onto commerce entities and writes
// them through the repositories' idempotent upserts. Records that fail
// validation or storage are skipped with a warning; a batch never aborts on
// a single record, the next full resync reconciles whatever was missed.
type Upserter struct {
	customerRepo commerce.CustomerRepository
	productRepo  commerce.ProductRepository
	orderRepo    commerce.OrderRepository
	logger       *zap.Logger
}

// NewUpserter creates an upserter over the commerce repositories
func NewUpserter(
	customerRepo commerce.CustomerRepository,
	productRepo commerce.ProductRepository,
	orderRepo commerce.OrderRepository,
	logger *zap.Logger,
) *Upserter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Upserter{
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		logger:       logger,
	}
}

// ApplyCustomers upserts one page of customer records for the tenant
func (u *Upserter) ApplyCustomers(ctx context.Context, tenantID uuid.UUID, records []ingestion.CustomerRecord) (int, error) {
	applied := 0
	for _, record := range records {
		customer, err := commerce.NewCustomer(tenantID, record.ExternalID)
		if err != nil {
			u.logger.Warn("Skipping invalid customer record",
				zap.String("tenant_id", tenantID.String()),
				zap.String("external_id", record.ExternalID),
				zap.Error(err))
			continue
		}
		customer.ApplyProfile(record.FirstName, record.LastName, record.Email, record.TotalSpent)

		if err := u.customerRepo.Upsert(ctx, customer); err != nil {
			u.logger.Warn("Skipping customer record after storage failure",
				zap.String("tenant_id", tenantID.String()),
				zap.String("external_id", record.ExternalID),
				zap.Error(err))
			continue
		}
		applied++
	}
	return applied, nil
}

// ApplyProducts upserts one page of product records for the tenant
func (u *Upserter) ApplyProducts(ctx context.Context, tenantID uuid.UUID, records []ingestion.ProductRecord) (int, error) {
	applied := 0
	for _, record := range records {
		product, err := commerce.NewProduct(tenantID, record.ExternalID)
		if err != nil {
			u.logger.Warn("Skipping invalid product record",
				zap.String("tenant_id", tenantID.String()),
				zap.String("external_id", record.ExternalID),
				zap.Error(err))
			continue
		}
		product.ApplyListing(record.Title, record.Price)

		if err := u.productRepo.Upsert(ctx, product); err != nil {
			u.logger.Warn("Skipping product record after storage failure",
				zap.String("tenant_id", tenantID.String()),
				zap.String("external_id", record.ExternalID),
				zap.Error(err))
			continue
		}
		applied++
	}
	return applied, nil
}

// ApplyOrders upserts one page of order records for the tenant. The
// customer reference is stored as given, even when the referenced customer
// has not been pulled yet.
func (u *Upserter) ApplyOrders(ctx context.Context, tenantID uuid.UUID, records []ingestion.OrderRecord) (int, error) {
	applied := 0
	for _, record := range records {
		order, err := commerce.NewOrder(tenantID, record.ExternalID)
		if err != nil {
			u.logger.Warn("Skipping invalid order record",
				zap.String("tenant_id", tenantID.String()),
				zap.String("external_id", record.ExternalID),
				zap.Error(err))
			continue
		}
		order.ApplyDetails(record.Total, record.Currency, record.CustomerExternalID, record.PlacedAt)

		if err := u.orderRepo.Upsert(ctx, order); err != nil {
			u.logger.Warn("Skipping order record after storage failure",
				zap.String("tenant_id", tenantID.String()),
				zap.String("external_id", record.ExternalID),
				zap.Error(err))
			continue
		}
		applied++
	}
	return applied, nil
}
