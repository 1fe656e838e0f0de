package dto

import (
	"time"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChannelURI binds the :id path parameter
type ChannelURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ImportQuery binds the import run options
type ImportQuery struct {
	// RequireOrders falls back to the configured default when absent
	RequireOrders *bool `form:"require_orders"`
}

// SyncRecordListQuery binds the sync record listing parameters
type SyncRecordListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=SUCCESS FAILED SKIPPED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToFilter converts the query into a repository filter
func (q SyncRecordListQuery) ToFilter() integration.OrderSyncRecordFilter {
	filter := integration.OrderSyncRecordFilter{
		Filter: shared.Filter{Page: q.Page, PageSize: q.PageSize},
	}
	if q.Status != "" {
		status := integration.SyncStatus(q.Status)
		filter.Status = &status
	}
	return filter
}

// SaleSummary is a sale created by an import run
type SaleSummary struct {
	ID              uuid.UUID       `json:"id"`
	ExternalOrderID string          `json:"external_order_id"`
	PartyID         uuid.UUID       `json:"party_id"`
	SaleDate        time.Time       `json:"sale_date"`
	Currency        string          `json:"currency"`
	Lines           int             `json:"lines"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// SkippedOrderResponse is an order imported by an earlier run
type SkippedOrderResponse struct {
	ExternalOrderID string    `json:"external_order_id"`
	SaleID          uuid.UUID `json:"sale_id"`
}

// ImportFailureResponse is an order the run could not import
type ImportFailureResponse struct {
	ExternalOrderID string `json:"external_order_id"`
	Error           string `json:"error"`
}

// ImportResultResponse is the body of a completed import run
type ImportResultResponse struct {
	ChannelID   uuid.UUID               `json:"channel_id"`
	Status      string                  `json:"status"`
	WindowStart time.Time               `json:"window_start"`
	WindowEnd   time.Time               `json:"window_end"`
	Created     []SaleSummary           `json:"created"`
	Skipped     []SkippedOrderResponse  `json:"skipped"`
	Failures    []ImportFailureResponse `json:"failures"`
	DurationMs  int64                   `json:"duration_ms"`
}

// NewImportResultResponse converts a run result
func NewImportResultResponse(r *integration.ImportResult) ImportResultResponse {
	resp := ImportResultResponse{
		ChannelID:   r.ChannelID,
		Status:      r.Status.String(),
		WindowStart: r.WindowStart,
		WindowEnd:   r.WindowEnd,
		Created:     make([]SaleSummary, 0, len(r.Created)),
		Skipped:     make([]SkippedOrderResponse, 0, len(r.Skipped)),
		Failures:    make([]ImportFailureResponse, 0, len(r.Failures)),
		DurationMs:  r.Duration().Milliseconds(),
	}
	for _, s := range r.Created {
		resp.Created = append(resp.Created, newSaleSummary(s))
	}
	for _, s := range r.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedOrderResponse{ExternalOrderID: s.ExternalOrderID, SaleID: s.SaleID})
	}
	for _, f := range r.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		resp.Failures = append(resp.Failures, ImportFailureResponse{ExternalOrderID: f.ExternalOrderID, Error: msg})
	}
	return resp
}

func newSaleSummary(s *trade.Sale) SaleSummary {
	return SaleSummary{
		ID:              s.ID,
		ExternalOrderID: s.ExternalOrderID,
		PartyID:         s.PartyID,
		SaleDate:        s.SaleDate,
		Currency:        s.Currency,
		Lines:           len(s.Lines),
		TotalAmount:     s.TotalAmount(),
	}
}

// TokenStatusResponse reports the channel's auth token validity
type TokenStatusResponse struct {
	ChannelID      uuid.UUID  `json:"channel_id"`
	Status         string     `json:"status"`
	ExpirationTime *time.Time `json:"expiration_time,omitempty"`
}

// NewTokenStatusResponse converts a token status
func NewTokenStatusResponse(channelID uuid.UUID, s *integration.TokenStatus) TokenStatusResponse {
	resp := TokenStatusResponse{ChannelID: channelID, Status: string(s.Status)}
	if !s.ExpirationTime.IsZero() {
		t := s.ExpirationTime
		resp.ExpirationTime = &t
	}
	return resp
}

// SyncRecordResponse is one order sync record
type SyncRecordResponse struct {
	ID              uuid.UUID  `json:"id"`
	ExternalOrderID string     `json:"external_order_id"`
	SaleID          *uuid.UUID `json:"sale_id,omitempty"`
	Status          string     `json:"status"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	Attempts        int        `json:"attempts"`
	LastAttemptAt   time.Time  `json:"last_attempt_at"`
}

// NewSyncRecordResponses converts a page of records
func NewSyncRecordResponses(records []integration.OrderSyncRecord) []SyncRecordResponse {
	out := make([]SyncRecordResponse, len(records))
	for i, r := range records {
		out[i] = SyncRecordResponse{
			ID:              r.ID,
			ExternalOrderID: r.ExternalOrderID,
			SaleID:          r.SaleID,
			Status:          r.Status.String(),
			ErrorMessage:    r.ErrorMessage,
			Attempts:        r.Attempts,
			LastAttemptAt:   r.LastAttemptAt,
		}
	}
	return out
}
