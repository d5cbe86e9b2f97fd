package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/commerce"
	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/shared"
)

// TenantServiceImpl implements tenant onboarding and lifecycle management
type TenantServiceImpl struct {
	tenantRepo   identity.TenantRepository
	customerRepo commerce.CustomerRepository
	productRepo  commerce.ProductRepository
	orderRepo    commerce.OrderRepository
	logger       *zap.Logger
}

// NewTenantService creates a new TenantServiceImpl
func NewTenantService(
	tenantRepo identity.TenantRepository,
	customerRepo commerce.CustomerRepository,
	productRepo commerce.ProductRepository,
	orderRepo commerce.OrderRepository,
	logger *zap.Logger,
) *TenantServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantServiceImpl{
		tenantRepo:   tenantRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		logger:       logger,
	}
}

// OnboardTenant registers a new tenant with its shop credentials. The shop
// domain is normalized before the uniqueness check, so the same shop cannot
// be onboarded twice under different spellings.
func (s *TenantServiceImpl) OnboardTenant(ctx context.Context, name, email, shopDomain, accessToken string) (*identity.Tenant, error) {
	tenant, err := identity.NewTenant(name, email, shopDomain, accessToken)
	if err != nil {
		return nil, err
	}

	exists, err := s.tenantRepo.ExistsByShopDomain(ctx, tenant.ShopDomain)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("SHOP_ALREADY_ONBOARDED", "A tenant for this shop domain already exists")
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant onboarded",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("shop_domain", tenant.ShopDomain),
	)
	return tenant, nil
}

// GetTenant retrieves a tenant by ID
func (s *TenantServiceImpl) GetTenant(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, id)
}

// GetTenantByShopDomain retrieves a tenant by its shop domain. The lookup is
// case insensitive and tolerates un-normalized input.
func (s *TenantServiceImpl) GetTenantByShopDomain(ctx context.Context, domain string) (*identity.Tenant, error) {
	normalized, err := identity.NormalizeShopDomain(domain)
	if err != nil {
		return nil, err
	}
	return s.tenantRepo.FindByShopDomain(ctx, normalized)
}

// ListTenants lists tenants with pagination
func (s *TenantServiceImpl) ListTenants(ctx context.Context, filter shared.Filter) (*shared.Paginated[identity.Tenant], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	tenants, err := s.tenantRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.tenantRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(tenants, total, filter.Page, filter.PageSize)
	return &result, nil
}

// RotateCredentials replaces the tenant's access token and reactivates a
// tenant that was suspended for credential failures.
func (s *TenantServiceImpl) RotateCredentials(ctx context.Context, id uuid.UUID, accessToken string) (*identity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.RotateAccessToken(accessToken); err != nil {
		return nil, err
	}
	if tenant.Status == identity.TenantStatusSuspended {
		tenant.Activate()
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant credentials rotated", zap.String("tenant_id", id.String()))
	return tenant, nil
}

// SuspendTenant marks the tenant suspended so the scheduler skips it
func (s *TenantServiceImpl) SuspendTenant(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	tenant.Suspend()
	return s.tenantRepo.Save(ctx, tenant)
}

// ActivateTenant returns a suspended or inactive tenant to active
func (s *TenantServiceImpl) ActivateTenant(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	tenant.Activate()
	return s.tenantRepo.Save(ctx, tenant)
}

// DeleteTenant removes the tenant together with all of its synchronized
// commerce data. Commerce rows go first so a failure never leaves orphaned
// data behind a deleted tenant.
func (s *TenantServiceImpl) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	if _, err := s.tenantRepo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.orderRepo.DeleteForTenant(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.DeleteForTenant(ctx, id); err != nil {
		return err
	}
	if err := s.customerRepo.DeleteForTenant(ctx, id); err != nil {
		return err
	}
	if err := s.tenantRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Tenant deleted", zap.String("tenant_id", id.String()))
	return nil
}
