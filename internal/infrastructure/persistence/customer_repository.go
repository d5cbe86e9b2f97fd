package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopsync/backend/internal/domain/commerce"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Upsert inserts the customer or overwrites the profile fields of the row
// with the same (tenant_id, external_id). The upsert is a single statement,
// so concurrent pulls of the same record cannot race into a duplicate.
func (r *GormCustomerRepository) Upsert(ctx context.Context, customer *commerce.Customer) error {
	model := models.CustomerModelFromDomain(customer)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name",
			"last_name",
			"email",
			"total_spent",
			"updated_at",
		}),
	}).Create(model).Error
}

// FindByExternalID finds a customer within the tenant by its remote ID
func (r *GormCustomerRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*commerce.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountForTenant counts the tenant's customers
func (r *GormCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// TopBySpend returns the tenant's highest spending customers
func (r *GormCustomerRepository) TopBySpend(ctx context.Context, tenantID uuid.UUID, limit int) ([]commerce.Customer, error) {
	if limit <= 0 {
		limit = 5
	}

	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("total_spent DESC").
		Limit(limit).
		Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]commerce.Customer, len(customerModels))
	for i, model := range customerModels {
		customers[i] = *model.ToDomain()
	}
	return customers, nil
}

// DeleteForTenant removes all customers owned by the tenant
func (r *GormCustomerRepository) DeleteForTenant(ctx context.Context, tenantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.CustomerModel{}).Error
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ commerce.CustomerRepository = (*GormCustomerRepository)(nil)
