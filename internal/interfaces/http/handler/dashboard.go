package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopsync/backend/internal/application/report"
	"github.com/shopsync/backend/internal/domain/commerce"
	"github.com/shopsync/backend/internal/interfaces/http/middleware"
)

const (
	defaultTrendDays    = 30
	maxTrendDays        = 365
	defaultTopCustomers = 10
	maxTopCustomers     = 100
)

// DashboardService is the reporting surface the handler depends on
type DashboardService interface {
	Stats(ctx context.Context, tenantID uuid.UUID) (*report.DashboardStats, error)
	OrdersTrend(ctx context.Context, tenantID uuid.UUID, days int) ([]commerce.TrendPoint, error)
	TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]commerce.Customer, error)
}

var _ DashboardService = (*report.DashboardServiceImpl)(nil)

// DashboardHandler serves aggregate views over the synchronized data
type DashboardHandler struct {
	BaseHandler
	service DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats returns entity counts and total revenue for the calling tenant
func (h *DashboardHandler) Stats(c *gin.Context) {
	tenantID, ok := middleware.MustGetTenantUUID(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// OrdersTrend returns a daily order count and revenue series
func (h *DashboardHandler) OrdersTrend(c *gin.Context) {
	tenantID, ok := middleware.MustGetTenantUUID(c)
	if !ok {
		return
	}

	days, ok := h.boundedIntQuery(c, "days", defaultTrendDays, maxTrendDays)
	if !ok {
		return
	}

	trend, err := h.service.OrdersTrend(c.Request.Context(), tenantID, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, trend)
}

// TopCustomers returns the highest-spending customers
func (h *DashboardHandler) TopCustomers(c *gin.Context) {
	tenantID, ok := middleware.MustGetTenantUUID(c)
	if !ok {
		return
	}

	limit, ok := h.boundedIntQuery(c, "limit", defaultTopCustomers, maxTopCustomers)
	if !ok {
		return
	}

	customers, err := h.service.TopCustomers(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customers)
}

// boundedIntQuery parses a positive integer query parameter with a default
// and an upper bound, responding 400 on malformed input
func (h *DashboardHandler) boundedIntQuery(c *gin.Context, name string, def, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		h.BadRequest(c, name+" must be a positive integer")
		return 0, false
	}
	if parsed > max {
		parsed = max
	}
	return parsed, true
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/stats", h.Stats)
		dashboard.GET("/orders-trend", h.OrdersTrend)
		dashboard.GET("/top-customers", h.TopCustomers)
	}
}
