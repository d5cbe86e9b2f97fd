package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/infrastructure/logger"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
)

const (
	// TenantIDKey is the context key for the resolved tenant identifier
	TenantIDKey = "tenant_id"
	// TenantHeaderName is the HTTP header carrying the tenant identifier
	TenantHeaderName = "X-Tenant-ID"
)

// TenantValidator checks that a tenant exists and is allowed to call
// tenant-scoped endpoints. Implemented by the identity application service.
type TenantValidator interface {
	ValidateTenant(ctx context.Context, tenantID uuid.UUID) error
}

// TenantMiddlewareConfig configures tenant resolution
type TenantMiddlewareConfig struct {
	// SkipPaths lists path prefixes that bypass tenant resolution
	// (health endpoints, tenant onboarding, tenant listing)
	SkipPaths []string

	// Required rejects requests without a tenant header when true
	Required bool

	// Validator optionally verifies the tenant against the identity store.
	// When nil, only the UUID format is checked.
	Validator TenantValidator

	Logger *zap.Logger
}

// DefaultTenantMiddlewareConfig returns the default tenant middleware configuration
func DefaultTenantMiddlewareConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		SkipPaths: []string{
			"/health",
			"/ping",
			"/api/v1/system",
			"/api/v1/tenants",
		},
		Required: true,
	}
}

// TenantMiddleware resolves the tenant from the X-Tenant-ID header and stores
// it on both the gin context and the request context so downstream loggers
// and repositories can scope by tenant.
func TenantMiddleware(config TenantMiddlewareConfig) gin.HandlerFunc {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range config.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		raw := strings.TrimSpace(c.GetHeader(TenantHeaderName))
		if raw == "" {
			if config.Required {
				respondTenantError(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "missing X-Tenant-ID header")
				return
			}
			c.Next()
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			respondTenantError(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "X-Tenant-ID must be a valid UUID")
			return
		}

		if config.Validator != nil {
			if err := config.Validator.ValidateTenant(c.Request.Context(), tenantID); err != nil {
				log.Warn("tenant validation failed",
					zap.String("tenant_id", tenantID.String()),
					zap.String("path", path),
					zap.Error(err))
				respondTenantError(c, http.StatusForbidden, dto.ErrCodeForbidden, "tenant is not allowed")
				return
			}
		}

		c.Set(TenantIDKey, tenantID.String())
		ctx, _ := logger.WithTenantID(c.Request.Context(), logger.FromContext(c.Request.Context()), tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// OptionalTenantMiddleware resolves the tenant when present but never rejects
// the request. Used on endpoints that serve both scoped and unscoped reads.
func OptionalTenantMiddleware(config TenantMiddlewareConfig) gin.HandlerFunc {
	config.Required = false
	return TenantMiddleware(config)
}

// respondTenantError writes a standardized error envelope and aborts
func respondTenantError(c *gin.Context, status int, code, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// GetTenantID returns the tenant id string from the gin context
func GetTenantID(c *gin.Context) (string, bool) {
	id := c.GetString(TenantIDKey)
	return id, id != ""
}

// GetTenantUUID returns the tenant id as a uuid.UUID
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := GetTenantID(c)
	if !ok {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}

// MustGetTenantUUID returns the tenant id or aborts with 400. Handlers behind
// TenantMiddleware with Required=true can call this without a fallback path.
func MustGetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := GetTenantUUID(c)
	if !ok {
		respondTenantError(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "tenant context is missing")
		return uuid.Nil, false
	}
	return id, true
}
