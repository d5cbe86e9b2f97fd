package models

import (
	"time"

	"github.com/shopsync/backend/internal/domain/identity"
)

// TenantModel is the persistence model for the Tenant domain entity.
type TenantModel struct {
	BaseModel
	Name        string                `gorm:"type:varchar(200);not null"`
	Email       string                `gorm:"type:varchar(200);not null"`
	ShopDomain  string                `gorm:"type:varchar(200);not null;uniqueIndex"`
	AccessToken string                `gorm:"type:varchar(500);not null"`
	Status      identity.TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastSyncAt  *time.Time
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Email:       m.Email,
		ShopDomain:  m.ShopDomain,
		AccessToken: m.AccessToken,
		Status:      m.Status,
		LastSyncAt:  m.LastSyncAt,
	}
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Name = t.Name
	m.Email = t.Email
	m.ShopDomain = t.ShopDomain
	m.AccessToken = t.AccessToken
	m.Status = t.Status
	m.LastSyncAt = t.LastSyncAt
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant entity.
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}
