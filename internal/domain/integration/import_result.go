package integration

import (
	"time"

	"github.com/erp/marketsync/internal/domain/trade"
	"github.com/google/uuid"
)

// ImportStatus summarises a run
type ImportStatus string

const (
	ImportStatusSuccess  ImportStatus = "SUCCESS"
	ImportStatusPartial  ImportStatus = "PARTIAL"
	ImportStatusFailed   ImportStatus = "FAILED"
	ImportStatusNoOrders ImportStatus = "NO_ORDERS"
)

// String returns the string representation
func (s ImportStatus) String() string {
	return string(s)
}

// ImportFailure is an order that could not be imported
type ImportFailure struct {
	ExternalOrderID string
	Err             error
}

// SkippedOrder is an order that had been imported by an earlier run
type SkippedOrder struct {
	ExternalOrderID string
	SaleID          uuid.UUID
}

// ImportResult is the outcome of one import run
type ImportResult struct {
	ChannelID   uuid.UUID
	WindowStart time.Time
	WindowEnd   time.Time
	Status      ImportStatus
	Created     []*trade.Sale
	Skipped     []SkippedOrder
	Failures    []ImportFailure
	StartedAt   time.Time
	FinishedAt  time.Time
}

// NewImportResult starts a result for the given window
func NewImportResult(channelID uuid.UUID, windowStart, windowEnd time.Time) *ImportResult {
	return &ImportResult{
		ChannelID:   channelID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		StartedAt:   time.Now().UTC(),
	}
}

// AddCreated records a newly created sale
func (r *ImportResult) AddCreated(s *trade.Sale) {
	r.Created = append(r.Created, s)
}

// AddSkipped records an order imported by an earlier run
func (r *ImportResult) AddSkipped(externalOrderID string, saleID uuid.UUID) {
	r.Skipped = append(r.Skipped, SkippedOrder{ExternalOrderID: externalOrderID, SaleID: saleID})
}

// AddFailure records a failed order
func (r *ImportResult) AddFailure(externalOrderID string, err error) {
	r.Failures = append(r.Failures, ImportFailure{ExternalOrderID: externalOrderID, Err: err})
}

// TotalOrders is the number of orders the run looked at
func (r *ImportResult) TotalOrders() int {
	return len(r.Created) + len(r.Skipped) + len(r.Failures)
}

// Finish derives the status and stamps the finish time
func (r *ImportResult) Finish() {
	r.FinishedAt = time.Now().UTC()
	switch {
	case r.TotalOrders() == 0:
		r.Status = ImportStatusNoOrders
	case len(r.Failures) == 0:
		r.Status = ImportStatusSuccess
	case len(r.Failures) == r.TotalOrders():
		r.Status = ImportStatusFailed
	default:
		r.Status = ImportStatusPartial
	}
}

// Duration is how long the run took
func (r *ImportResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
