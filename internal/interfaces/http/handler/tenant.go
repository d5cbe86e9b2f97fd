package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appidentity "github.com/shopsync/backend/internal/application/identity"
	"github.com/shopsync/backend/internal/domain/identity"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
)

// TenantService is the identity application surface the handler depends on
type TenantService interface {
	OnboardTenant(ctx context.Context, name, email, shopDomain, accessToken string) (*identity.Tenant, error)
	GetTenant(ctx context.Context, id uuid.UUID) (*identity.Tenant, error)
	ListTenants(ctx context.Context, filter shared.Filter) (*shared.Paginated[identity.Tenant], error)
	RotateCredentials(ctx context.Context, id uuid.UUID, accessToken string) (*identity.Tenant, error)
	SuspendTenant(ctx context.Context, id uuid.UUID) error
	ActivateTenant(ctx context.Context, id uuid.UUID) error
	DeleteTenant(ctx context.Context, id uuid.UUID) error
}

var _ TenantService = (*appidentity.TenantServiceImpl)(nil)

// TenantHandler handles tenant lifecycle endpoints
type TenantHandler struct {
	BaseHandler
	service TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(service TenantService) *TenantHandler {
	return &TenantHandler{service: service}
}

// OnboardTenantRequest is the request body for tenant onboarding
type OnboardTenantRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Email       string `json:"email" binding:"required,email"`
	ShopDomain  string `json:"shop_domain" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

// RotateCredentialsRequest is the request body for credential rotation
type RotateCredentialsRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// TenantResponse is the API representation of a tenant. The access token is
// never returned; only a masked hint of the stored credential is exposed.
type TenantResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	ShopDomain      string     `json:"shop_domain"`
	Status          string     `json:"status"`
	AccessTokenHint string     `json:"access_token_hint,omitempty"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toTenantResponse(t *identity.Tenant) TenantResponse {
	return TenantResponse{
		ID:              t.ID,
		Name:            t.Name,
		Email:           t.Email,
		ShopDomain:      t.ShopDomain,
		Status:          string(t.Status),
		AccessTokenHint: maskToken(t.AccessToken),
		LastSyncAt:      t.LastSyncAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// maskToken keeps the last four characters of a credential for support
// conversations without exposing the secret
func maskToken(token string) string {
	if len(token) <= 4 {
		return ""
	}
	return "****" + token[len(token)-4:]
}

// Onboard registers a new tenant with its shop credentials
func (h *TenantHandler) Onboard(c *gin.Context) {
	var req OnboardTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tenant, err := h.service.OnboardTenant(c.Request.Context(),
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.Email),
		strings.TrimSpace(req.ShopDomain),
		strings.TrimSpace(req.AccessToken))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toTenantResponse(tenant))
}

// List returns tenants with pagination
func (h *TenantHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
	}

	page, err := h.service.ListTenants(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]TenantResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toTenantResponse(&page.Items[i]))
	}

	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// Get returns one tenant by id
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	tenant, err := h.service.GetTenant(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTenantResponse(tenant))
}

// RotateCredentials replaces the tenant's stored access token
func (h *TenantHandler) RotateCredentials(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req RotateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tenant, err := h.service.RotateCredentials(c.Request.Context(), id, strings.TrimSpace(req.AccessToken))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTenantResponse(tenant))
}

// Suspend marks a tenant suspended, excluding it from scheduled syncs
func (h *TenantHandler) Suspend(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.SuspendTenant(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Tenant suspended"})
}

// Activate re-enables a suspended tenant
func (h *TenantHandler) Activate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.ActivateTenant(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Tenant activated"})
}

// Delete removes a tenant and all of its synchronized data
func (h *TenantHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTenant(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// parseID reads the :id path parameter, responding 400 on malformed input
func (h *TenantHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant id")
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers tenant routes
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenants := rg.Group("/tenants")
	{
		tenants.POST("", h.Onboard)
		tenants.GET("", h.List)
		tenants.GET("/:id", h.Get)
		tenants.POST("/:id/credentials", h.RotateCredentials)
		tenants.POST("/:id/suspend", h.Suspend)
		tenants.POST("/:id/activate", h.Activate)
		tenants.DELETE("/:id", h.Delete)
	}
}
