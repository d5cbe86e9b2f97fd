package identity

import (
	"strings"
	"time"

	"github.com/shopsync/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended" // Suspended due to repeated credential failures
)

// ShopCredentials holds the API credentials needed to pull data from a
// tenant's store. The access token is write-only from the API's point of
// view: it is accepted at onboarding and never serialized back out.
type ShopCredentials struct {
	ShopDomain  string
	AccessToken string
}

// Tenant represents an onboarded store in the multi-tenant system.
// It is the aggregate root for tenant-related operations.
type Tenant struct {
	shared.BaseEntity
	Name        string
	Email       string
	ShopDomain  string
	AccessToken string `json:"-"`
	Status      TenantStatus
	LastSyncAt  *time.Time
}

// NewTenant creates a new tenant with required fields
func NewTenant(name, email, shopDomain, accessToken string) (*Tenant, error) {
	if err := validateTenantName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	domain, err := NormalizeShopDomain(shopDomain)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, shared.NewDomainError("INVALID_ACCESS_TOKEN", "Access token is required")
	}

	return &Tenant{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Email:       strings.ToLower(strings.TrimSpace(email)),
		ShopDomain:  domain,
		AccessToken: accessToken,
		Status:      TenantStatusActive,
	}, nil
}

// Credentials returns the tenant's store credentials
func (t *Tenant) Credentials() ShopCredentials {
	return ShopCredentials{
		ShopDomain:  t.ShopDomain,
		AccessToken: t.AccessToken,
	}
}

// IsActive reports whether the tenant may be synchronized
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// RotateAccessToken replaces the stored access token
func (t *Tenant) RotateAccessToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return shared.NewDomainError("INVALID_ACCESS_TOKEN", "Access token is required")
	}
	t.AccessToken = token
	t.UpdatedAt = time.Now()
	return nil
}

// Suspend marks the tenant as suspended
func (t *Tenant) Suspend() {
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now()
}

// Activate marks the tenant as active
func (t *Tenant) Activate() {
	t.Status = TenantStatusActive
	t.UpdatedAt = time.Now()
}

// MarkSynced records the completion time of the latest successful pull
func (t *Tenant) MarkSynced(at time.Time) {
	t.LastSyncAt = &at
	t.UpdatedAt = time.Now()
}

// NormalizeShopDomain lowercases the domain and strips any scheme and
// trailing slashes, so "https://Acme.myshopify.com/" and
// "acme.myshopify.com" refer to the same store.
func NormalizeShopDomain(domain string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimRight(d, "/")
	if d == "" {
		return "", shared.NewDomainError("INVALID_SHOP_DOMAIN", "Shop domain is required")
	}
	if strings.ContainsAny(d, " /?#") {
		return "", shared.NewDomainError("INVALID_SHOP_DOMAIN", "Shop domain must be a bare hostname")
	}
	return d, nil
}

func validateTenantName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Tenant name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 200 || !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Email is not valid")
	}
	return nil
}
