package integration

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/erp/marketsync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOrdersError(t *testing.T) {
	since := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	err := fmt.Errorf("import: %w", &NoOrdersError{Since: since})

	assert.ErrorIs(t, err, ErrNoOrders)
	assert.Contains(t, err.Error(), "2024-05-01T08:30:00Z")

	var noOrders *NoOrdersError
	require.True(t, errors.As(err, &noOrders))
	assert.Equal(t, since, noOrders.Since)
}

func TestImportResult_Finish(t *testing.T) {
	sale := &trade.Sale{}
	tests := []struct {
		name     string
		created  int
		skipped  int
		failures int
		want     ImportStatus
	}{
		{"empty", 0, 0, 0, ImportStatusNoOrders},
		{"all created", 2, 0, 0, ImportStatusSuccess},
		{"created and skipped", 1, 1, 0, ImportStatusSuccess},
		{"some failed", 1, 0, 1, ImportStatusPartial},
		{"all failed", 0, 0, 2, ImportStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewImportResult(uuid.New(), time.Now().Add(-time.Hour), time.Now())
			for i := 0; i < tt.created; i++ {
				r.AddCreated(sale)
			}
			for i := 0; i < tt.skipped; i++ {
				r.AddSkipped(fmt.Sprint(i), uuid.New())
			}
			for i := 0; i < tt.failures; i++ {
				r.AddFailure(fmt.Sprint(i), errors.New("boom"))
			}
			r.Finish()
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, tt.created+tt.skipped+tt.failures, r.TotalOrders())
			assert.False(t, r.FinishedAt.Before(r.StartedAt))
		})
	}
}

func TestOrderSyncRecord_Transitions(t *testing.T) {
	r := NewOrderSyncRecord(uuid.New(), "110-1")

	r.MarkFailed(errors.New("item removed"))
	assert.Equal(t, SyncStatusFailed, r.Status)
	assert.Equal(t, "item removed", r.ErrorMessage)
	assert.Equal(t, 1, r.Attempts)
	assert.Nil(t, r.SaleID)

	saleID := uuid.New()
	r.MarkSucceeded(saleID)
	assert.Equal(t, SyncStatusSuccess, r.Status)
	assert.Empty(t, r.ErrorMessage)
	assert.Equal(t, 2, r.Attempts)
	require.NotNil(t, r.SaleID)
	assert.Equal(t, saleID, *r.SaleID)

	r.MarkSkipped(saleID)
	assert.Equal(t, SyncStatusSkipped, r.Status)
	assert.Equal(t, 3, r.Attempts)
}

func TestSyncStatus_IsValid(t *testing.T) {
	assert.True(t, SyncStatusFailed.IsValid())
	assert.False(t, SyncStatus("PENDING").IsValid())
}

func TestNewImportCompletedEvent(t *testing.T) {
	channelID := uuid.New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	r := NewImportResult(channelID, start, start.Add(time.Hour))
	r.AddSkipped("A", uuid.New())
	r.AddFailure("B", errors.New("bad payload"))
	r.Finish()

	e := NewImportCompletedEvent(r)
	assert.Equal(t, channelID, e.ChannelID)
	assert.Equal(t, ImportStatusPartial, e.Status)
	assert.Equal(t, 0, e.Created)
	assert.Equal(t, 1, e.Skipped)
	assert.Equal(t, []string{"B"}, e.FailedOrderIDs)
	assert.Equal(t, r.FinishedAt, e.OccurredAt)
}
