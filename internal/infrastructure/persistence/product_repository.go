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

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Upsert inserts the product or overwrites the listing fields of the row
// with the same (tenant_id, external_id)
func (r *GormProductRepository) Upsert(ctx context.Context, product *commerce.Product) error {
	model := models.ProductModelFromDomain(product)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title",
			"price",
			"updated_at",
		}),
	}).Create(model).Error
}

// FindByExternalID finds a product within the tenant by its remote ID
func (r *GormProductRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*commerce.Product, error) {
	var model models.ProductModel
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

// CountForTenant counts the tenant's products
func (r *GormProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteForTenant removes all products owned by the tenant
func (r *GormProductRepository) DeleteForTenant(ctx context.Context, tenantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.ProductModel{}).Error
}

// Ensure GormProductRepository implements ProductRepository
var _ commerce.ProductRepository = (*GormProductRepository)(nil)
