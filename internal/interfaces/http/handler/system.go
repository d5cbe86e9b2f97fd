package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopsync/backend/internal/interfaces/http/dto"
)

// SystemHandler serves health and liveness endpoints
type SystemHandler struct {
	BaseHandler
	db        *gorm.DB
	version   string
	startedAt time.Time
}

// NewSystemHandler creates a system handler. db may be nil, in which case
// the health check skips the database probe.
func NewSystemHandler(db *gorm.DB, version string) *SystemHandler {
	if version == "" {
		version = "dev"
	}
	return &SystemHandler{
		db:        db,
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthStatus is the health endpoint payload
type HealthStatus struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Uptime   string            `json:"uptime"`
	Services map[string]string `json:"services,omitempty"`
}

// Health reports service health including the database connection
func (h *SystemHandler) Health(c *gin.Context) {
	status := HealthStatus{
		Status:   "healthy",
		Version:  h.version,
		Uptime:   time.Since(h.startedAt).Round(time.Second).String(),
		Services: map[string]string{},
	}

	httpStatus := http.StatusOK
	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status.Status = "degraded"
			status.Services["database"] = "unreachable"
			httpStatus = http.StatusServiceUnavailable
		} else {
			status.Services["database"] = "ok"
		}
	}

	c.JSON(httpStatus, dto.NewSuccessResponse(status))
}

// Ping is a minimal liveness probe
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "pong"})
}

// RegisterRoutes registers system routes on the engine root, outside the
// versioned API group so probes stay stable across versions
func (h *SystemHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.Health)
	router.GET("/ping", h.Ping)
}
