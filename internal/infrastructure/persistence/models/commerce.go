package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopsync/backend/internal/domain/commerce"
)

// CustomerModel is the persistence model for the Customer domain entity.
// The (tenant_id, external_id) pair is unique; upserts target this index.
type CustomerModel struct {
	BaseModel
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customers_tenant_external;index"`
	ExternalID string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_customers_tenant_external"`
	FirstName  string          `gorm:"type:varchar(200)"`
	LastName   string          `gorm:"type:varchar(200)"`
	Email      string          `gorm:"type:varchar(200)"`
	TotalSpent decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *commerce.Customer {
	return &commerce.Customer{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		ExternalID: m.ExternalID,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Email:      m.Email,
		TotalSpent: m.TotalSpent,
	}
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer.
func CustomerModelFromDomain(c *commerce.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomainBaseEntity(c.BaseEntity)
	m.TenantID = c.TenantID
	m.ExternalID = c.ExternalID
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Email = c.Email
	m.TotalSpent = c.TotalSpent
	return m
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_external;index"`
	ExternalID string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_products_tenant_external"`
	Title      string          `gorm:"type:varchar(500)"`
	Price      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *commerce.Product {
	return &commerce.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		ExternalID: m.ExternalID,
		Title:      m.Title,
		Price:      m.Price,
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product.
func ProductModelFromDomain(p *commerce.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomainBaseEntity(p.BaseEntity)
	m.TenantID = p.TenantID
	m.ExternalID = p.ExternalID
	m.Title = p.Title
	m.Price = p.Price
	return m
}

// OrderModel is the persistence model for the Order domain entity.
// CustomerExternalID is stored without a foreign key; the referenced
// customer row may not exist yet when the order arrives.
type OrderModel struct {
	BaseModel
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_orders_tenant_external;index"`
	ExternalID         string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_orders_tenant_external"`
	Total              decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	Currency           string          `gorm:"type:varchar(10)"`
	CustomerExternalID *string         `gorm:"type:varchar(100);index"`
	PlacedAt           time.Time       `gorm:"index"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *commerce.Order {
	return &commerce.Order{
		BaseEntity:         m.BaseModel.ToDomain(),
		TenantID:           m.TenantID,
		ExternalID:         m.ExternalID,
		Total:              m.Total,
		Currency:           m.Currency,
		CustomerExternalID: m.CustomerExternalID,
		PlacedAt:           m.PlacedAt,
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *commerce.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomainBaseEntity(o.BaseEntity)
	m.TenantID = o.TenantID
	m.ExternalID = o.ExternalID
	m.Total = o.Total
	m.Currency = o.Currency
	m.CustomerExternalID = o.CustomerExternalID
	m.PlacedAt = o.PlacedAt
	return m
}
