// Package handler provides HTTP handlers for the sync service API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct{}

// getRequestID retrieves the request ID set by the RequestID middleware
func (h *BaseHandler) getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// Success sends a successful response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a successful response with data and pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 response with data
func (h *BaseHandler) Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorWithCode sends an error response, deriving the HTTP status from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	status := dto.GetHTTPStatus(code)
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, h.getRequestID(c)))
}

// BadRequest sends a 400 error response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, h.getRequestID(c)))
}

// NotFound sends a 404 error response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, message, h.getRequestID(c)))
}

// Conflict sends a 409 error response
func (h *BaseHandler) Conflict(c *gin.Context, code, message string) {
	c.JSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(code, message, h.getRequestID(c)))
}

// InternalError sends a 500 error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, message, h.getRequestID(c)))
}

// ValidationError sends a 400 response with field-level validation details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", h.getRequestID(c), details))
}

// HandleError maps service-layer errors to HTTP responses.
// Domain errors carry their own code, which decides the status; everything
// else is treated as an internal error without leaking details to the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if errors.Is(err, ingestion.ErrSyncInProgress) {
		h.ErrorWithCode(c, dto.ErrCodeSyncInProgress, "A sync is already running for this tenant")
		return
	}

	var syncErr *ingestion.SyncError
	if errors.As(err, &syncErr) {
		h.handleSyncError(c, syncErr)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.ErrorWithCode(c, code, domainErr.Message)
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}

// handleSyncError unwraps a failed sync run. The underlying cause decides
// the status; the partial counts are returned so callers can see what was
// applied before the failure.
func (h *BaseHandler) handleSyncError(c *gin.Context, syncErr *ingestion.SyncError) {
	var code string
	var domainErr *shared.DomainError
	switch {
	case errors.Is(syncErr.Err, ingestion.ErrPlatformAuthFailed):
		code = dto.ErrCodePlatformAuth
	case errors.Is(syncErr.Err, ingestion.ErrPlatformRateLimited):
		code = dto.ErrCodeRateLimited
	case errors.As(syncErr.Err, &domainErr):
		code = dto.NormalizeErrorCode(domainErr.Code)
	default:
		code = dto.ErrCodePlatformUnavailable
	}

	status := dto.GetHTTPStatus(code)
	resp := dto.NewErrorResponseWithRequestID(code, syncErr.Error(), h.getRequestID(c))
	resp.Data = gin.H{
		"failed_stage": string(syncErr.Stage),
		"partial":      syncErr.Partial,
	}
	c.JSON(status, resp)
}
