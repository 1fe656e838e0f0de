package integration

import (
	"context"
	"time"

	"github.com/erp/marketsync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Topics of the events an import run emits
const (
	TopicSaleImported    = "marketsync.sale.imported"
	TopicImportCompleted = "marketsync.import.completed"
)

// EventPublisher hands integration events to downstream consumers. key
// orders events: all events with the same key land in one partition.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

// SaleImportedEvent announces a sale created from a marketplace order.
// Re-imports of the same order do not emit it again.
type SaleImportedEvent struct {
	ChannelID       uuid.UUID       `json:"channel_id"`
	SaleID          uuid.UUID       `json:"sale_id"`
	PartyID         uuid.UUID       `json:"party_id"`
	ExternalOrderID string          `json:"external_order_id"`
	SaleDate        time.Time       `json:"sale_date"`
	Currency        string          `json:"currency"`
	Total           decimal.Decimal `json:"total"`
	Lines           int             `json:"lines"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

func NewSaleImportedEvent(s *trade.Sale, at time.Time) SaleImportedEvent {
	return SaleImportedEvent{
		ChannelID:       s.ChannelID,
		SaleID:          s.ID,
		PartyID:         s.PartyID,
		ExternalOrderID: s.ExternalOrderID,
		SaleDate:        s.SaleDate,
		Currency:        s.Currency,
		Total:           s.TotalAmount(),
		Lines:           len(s.Lines),
		OccurredAt:      at.UTC(),
	}
}

// ImportCompletedEvent summarises a finished run, including runs that
// found no orders
type ImportCompletedEvent struct {
	ChannelID      uuid.UUID    `json:"channel_id"`
	Status         ImportStatus `json:"status"`
	WindowStart    time.Time    `json:"window_start"`
	WindowEnd      time.Time    `json:"window_end"`
	Created        int          `json:"created"`
	Skipped        int          `json:"skipped"`
	Failed         int          `json:"failed"`
	FailedOrderIDs []string     `json:"failed_order_ids,omitempty"`
	OccurredAt     time.Time    `json:"occurred_at"`
}

func NewImportCompletedEvent(r *ImportResult) ImportCompletedEvent {
	e := ImportCompletedEvent{
		ChannelID:   r.ChannelID,
		Status:      r.Status,
		WindowStart: r.WindowStart,
		WindowEnd:   r.WindowEnd,
		Created:     len(r.Created),
		Skipped:     len(r.Skipped),
		Failed:      len(r.Failures),
		OccurredAt:  r.FinishedAt,
	}
	for _, f := range r.Failures {
		e.FailedOrderIDs = append(e.FailedOrderIDs, f.ExternalOrderID)
	}
	return e
}
