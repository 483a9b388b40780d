package handler

import (
	"errors"
	"net/http"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/interfaces/http/dto"
	"github.com/condo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// actor returns the caller identity set by logger.GinMiddleware from the
// X-Actor header. Services resolve an empty actor to the system actor.
func actor(c *gin.Context) string {
	return logger.GetActor(c.Request.Context())
}

func requestID(c *gin.Context) string {
	return logger.GetRequestID(c.Request.Context())
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// successPage sends a page of results with pagination meta
func successPage[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(page.Items, page.Total, page.Page, page.PageSize, page.TotalPages))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message, requestID(c)))
}

// HandleError converts err to an HTTP response. Domain errors keep their
// code; anything else is logged and reported as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.HandleErrorWithData(c, err, nil)
}

// HandleErrorWithData is HandleError with a payload attached to the failure,
// such as the partial report of an aborted generation run.
func (h *BaseHandler) HandleErrorWithData(c *gin.Context, err error, data any) {
	if err == nil {
		return
	}

	var resp dto.Response
	status := http.StatusInternalServerError
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status = dto.GetHTTPStatus(domainErr.Code)
		resp = dto.NewErrorResponse(domainErr.Code, domainErr.Message, requestID(c))
	} else {
		_ = c.Error(err)
		logger.GetGinLogger(c).Error("request failed", zap.Error(err))
		resp = dto.NewErrorResponse(dto.ErrCodeInternal, "An unexpected error occurred", requestID(c))
	}
	resp.Data = data
	c.JSON(status, resp)
}

// BindJSON decodes the body into req, writing the 400 response on failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery decodes the query string into req, writing the 400 response on failure
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// PathID parses the :id path parameter
func (h *BaseHandler) PathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}
