package integration

import (
	"context"
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Order Sync Records
// ---------------------------------------------------------------------------

// SyncStatus is the outcome of the last import attempt of an order
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusFailed  SyncStatus = "FAILED"
	SyncStatusSkipped SyncStatus = "SKIPPED"
)

// IsValid returns true if the status is known
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusSuccess, SyncStatusFailed, SyncStatusSkipped:
		return true
	}
	return false
}

// String returns the string representation
func (s SyncStatus) String() string {
	return string(s)
}

// OrderSyncRecord logs the import attempts of one marketplace order.
// (ChannelID, ExternalOrderID) is unique.
type OrderSyncRecord struct {
	// ID is the unique identifier of the record
	ID uuid.UUID
	// ChannelID is the channel the order came from
	ChannelID uuid.UUID
	// ExternalOrderID is the marketplace order id
	ExternalOrderID string
	// SaleID is the local sale, once created
	SaleID *uuid.UUID
	// Status of the last attempt
	Status SyncStatus
	// ErrorMessage of the last failed attempt
	ErrorMessage string
	// Attempts counts import attempts
	Attempts int
	// LastAttemptAt is when the order was last processed
	LastAttemptAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrderSyncRecord creates an empty record for an order
func NewOrderSyncRecord(channelID uuid.UUID, externalOrderID string) *OrderSyncRecord {
	now := time.Now().UTC()
	return &OrderSyncRecord{
		ID:              uuid.New(),
		ChannelID:       channelID,
		ExternalOrderID: externalOrderID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (r *OrderSyncRecord) attempt(status SyncStatus) {
	now := time.Now().UTC()
	r.Status = status
	r.Attempts++
	r.LastAttemptAt = now
	r.UpdatedAt = now
}

// MarkSucceeded records a created sale
func (r *OrderSyncRecord) MarkSucceeded(saleID uuid.UUID) {
	r.attempt(SyncStatusSuccess)
	r.SaleID = &saleID
	r.ErrorMessage = ""
}

// MarkSkipped records an order whose sale already existed
func (r *OrderSyncRecord) MarkSkipped(saleID uuid.UUID) {
	r.attempt(SyncStatusSkipped)
	r.SaleID = &saleID
	r.ErrorMessage = ""
}

// MarkFailed records a failed attempt
func (r *OrderSyncRecord) MarkFailed(err error) {
	r.attempt(SyncStatusFailed)
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// OrderSyncRecordFilter narrows record listings
type OrderSyncRecordFilter struct {
	shared.Filter
	// Status filters by last attempt outcome (optional)
	Status *SyncStatus
}

// OrderSyncRecordRepository persists order sync records
type OrderSyncRecordRepository interface {
	// FindByExternalOrder returns shared.ErrNotFound if the order was never
	// attempted on the channel
	FindByExternalOrder(ctx context.Context, channelID uuid.UUID, externalOrderID string) (*OrderSyncRecord, error)
	// Save creates or updates a record
	Save(ctx context.Context, record *OrderSyncRecord) error
	List(ctx context.Context, channelID uuid.UUID, filter OrderSyncRecordFilter) ([]OrderSyncRecord, int64, error)
}
