package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsync/backend/internal/domain/commerce"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Upsert inserts the order or overwrites the detail fields of the row with
// the same (tenant_id, external_id)
func (r *GormOrderRepository) Upsert(ctx context.Context, order *commerce.Order) error {
	model := models.OrderModelFromDomain(order)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total",
			"currency",
			"customer_external_id",
			"placed_at",
			"updated_at",
		}),
	}).Create(model).Error
}

// FindByExternalID finds an order within the tenant by its remote ID
func (r *GormOrderRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*commerce.Order, error) {
	var model models.OrderModel
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

// CountForTenant counts the tenant's orders
func (r *GormOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RevenueForTenant sums order totals for the tenant
func (r *GormOrderRepository) RevenueForTenant(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Revenue decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("COALESCE(SUM(total), 0) AS revenue").
		Where("tenant_id = ?", tenantID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Revenue, nil
}

// DailyTrend aggregates the tenant's orders per day since the given time.
// DATE() is understood by both PostgreSQL and SQLite.
func (r *GormOrderRepository) DailyTrend(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]commerce.TrendPoint, error) {
	var points []commerce.TrendPoint
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("DATE(placed_at) AS date, COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue").
		Where("tenant_id = ? AND placed_at >= ?", tenantID, since).
		Group("DATE(placed_at)").
		Order("date ASC").
		Scan(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}

// DeleteForTenant removes all orders owned by the tenant
func (r *GormOrderRepository) DeleteForTenant(ctx context.Context, tenantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&models.OrderModel{}).Error
}

// Ensure GormOrderRepository implements OrderRepository
var _ commerce.OrderRepository = (*GormOrderRepository)(nil)
