package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appingestion "github.com/shopsync/backend/internal/application/ingestion"
	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/interfaces/http/middleware"
)

// defaultHistoryLimit caps the run history returned when the caller does not
// ask for a specific amount
const defaultHistoryLimit = 20

// SyncService is the ingestion application surface the handler depends on
type SyncService interface {
	StartSync(ctx context.Context, tenantID uuid.UUID, trigger string) (ingestion.SyncSummary, error)
	IsSyncRunning(tenantID uuid.UUID) bool
	History(tenantID uuid.UUID, limit int) []appingestion.SyncRun
}

var _ SyncService = (*appingestion.SyncServiceImpl)(nil)

// SyncHandler handles sync trigger and history endpoints. All routes are
// tenant-scoped via the X-Tenant-ID header.
type SyncHandler struct {
	BaseHandler
	service SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(service SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// SyncStatusResponse reports whether a sync is currently running
type SyncStatusResponse struct {
	Running bool `json:"running"`
}

// Trigger starts a full sync for the calling tenant. The request blocks
// until the run completes and returns the applied counts.
func (h *SyncHandler) Trigger(c *gin.Context) {
	tenantID, ok := middleware.MustGetTenantUUID(c)
	if !ok {
		return
	}

	summary, err := h.service.StartSync(c.Request.Context(), tenantID, appingestion.TriggerManual)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Status reports whether a sync run is in flight for the calling tenant
func (h *SyncHandler) Status(c *gin.Context) {
	tenantID, ok := middleware.MustGetTenantUUID(c)
	if !ok {
		return
	}

	h.Success(c, SyncStatusResponse{Running: h.service.IsSyncRunning(tenantID)})
}

// History returns recent sync runs for the calling tenant, newest first
func (h *SyncHandler) History(c *gin.Context) {
	tenantID, ok := middleware.MustGetTenantUUID(c)
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs := h.service.History(tenantID, limit)
	h.Success(c, runs)
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("", h.Trigger)
		sync.GET("/status", h.Status)
		sync.GET("/runs", h.History)
	}
}
