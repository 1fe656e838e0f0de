// Package handler implements the HTTP endpoints of the import engine.
package handler

import (
	"net/http"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/interfaces/http/dto"
	"github.com/erp/marketsync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func requestID(c *gin.Context) string {
	return logger.GetRequestID(c.Request.Context())
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends data along with the position of page
func SuccessWithMeta[T any](c *gin.Context, data any, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(data, page))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, requestID(c)))
}

// HandleError classifies err and sends the matching error response.
// Internal errors are logged and their message is not exposed.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	code := dto.ErrorCodeFor(err)
	status := dto.GetHTTPStatus(code)
	message := err.Error()
	if status >= http.StatusInternalServerError && code == dto.ErrCodeInternal {
		logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
		message = "Internal server error"
	}
	_ = c.Error(err)
	h.Error(c, status, code, message)
}

// bindChannelID parses the :id path parameter, sending a 400 on failure
func (h *BaseHandler) bindChannelID(c *gin.Context) (uuid.UUID, bool) {
	var uri dto.ChannelURI
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleValidationError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(uri.ID)
	if err != nil {
		middleware.HandleValidationError(c, err)
		return uuid.Nil, false
	}
	c.Request = c.Request.WithContext(logger.WithChannelID(c.Request.Context(), id.String()))
	return id, true
}
