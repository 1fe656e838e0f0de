package handler

import (
	"context"
	"errors"

	appintegration "github.com/erp/marketsync/internal/application/integration"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/auth"
	"github.com/erp/marketsync/internal/interfaces/http/dto"
	"github.com/erp/marketsync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderImporter runs imports and lists their per-order history
type OrderImporter interface {
	ImportOrders(ctx context.Context, channelID uuid.UUID, opts appintegration.ImportOptions) (*integration.ImportResult, error)
	ListSyncRecords(ctx context.Context, channelID uuid.UUID, filter integration.OrderSyncRecordFilter) (shared.Paginated[integration.OrderSyncRecord], error)
}

// TokenStatusChecker reports a channel's marketplace token status
type TokenStatusChecker interface {
	CheckTokenStatus(ctx context.Context, channelID uuid.UUID) (*integration.TokenStatus, error)
}

// ChannelHandler serves the per-channel import endpoints
type ChannelHandler struct {
	BaseHandler
	importer      OrderImporter
	tokens        TokenStatusChecker
	requireOrders bool
}

// NewChannelHandler creates a new ChannelHandler. requireOrders is the
// default when a request does not set require_orders.
func NewChannelHandler(importer OrderImporter, tokens TokenStatusChecker, requireOrders bool) *ChannelHandler {
	return &ChannelHandler{
		importer:      importer,
		tokens:        tokens,
		requireOrders: requireOrders,
	}
}

// ImportOrders runs an import for the channel.
//
// POST /api/v1/channels/:id/import?require_orders=true|false
func (h *ChannelHandler) ImportOrders(c *gin.Context) {
	channelID, ok := h.bindChannelID(c)
	if !ok {
		return
	}
	var query dto.ImportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	opts := appintegration.ImportOptions{RequireOrders: h.requireOrders}
	if query.RequireOrders != nil {
		opts.RequireOrders = *query.RequireOrders
	}

	result, err := h.importer.ImportOrders(c.Request.Context(), channelID, opts)
	if err != nil {
		var noOrders *integration.NoOrdersError
		if errors.As(err, &noOrders) {
			h.Error(c, dto.GetHTTPStatus(dto.ErrCodeNoOrders), dto.ErrCodeNoOrders, noOrders.Error())
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewImportResultResponse(result))
}

// TokenStatus reports the channel's marketplace token status.
//
// GET /api/v1/channels/:id/token-status
func (h *ChannelHandler) TokenStatus(c *gin.Context) {
	channelID, ok := h.bindChannelID(c)
	if !ok {
		return
	}
	status, err := h.tokens.CheckTokenStatus(c.Request.Context(), channelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewTokenStatusResponse(channelID, status))
}

// ListSyncRecords pages through the channel's per-order import history.
//
// GET /api/v1/channels/:id/sync-records?status=FAILED&page=1&page_size=20
func (h *ChannelHandler) ListSyncRecords(c *gin.Context) {
	channelID, ok := h.bindChannelID(c)
	if !ok {
		return
	}
	var query dto.SyncRecordListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.importer.ListSyncRecords(c.Request.Context(), channelID, query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessWithMeta(c, dto.NewSyncRecordResponses(page.Items), page)
}

// RegisterRoutes mounts the channel endpoints on rg
func (h *ChannelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	channels := rg.Group("/channels/:id")
	channels.POST("/import", middleware.RequireScope(auth.ScopeImportWrite), h.ImportOrders)
	channels.GET("/token-status", middleware.RequireScope(auth.ScopeImportRead), h.TokenStatus)
	channels.GET("/sync-records", middleware.RequireScope(auth.ScopeImportRead), h.ListSyncRecords)
}
