package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/trade"
)

func TestNewImportJob(t *testing.T) {
	channelID := uuid.New()

	job := NewImportJob(channelID, 3)

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, channelID, job.ChannelID)
	assert.Equal(t, ImportJobStatusPending, job.Status)
	assert.Equal(t, 3, job.MaxRetries)
	assert.Nil(t, job.StartedAt)
	assert.False(t, job.IsFinished())
}

func TestImportJob_Start(t *testing.T) {
	job := NewImportJob(uuid.New(), 3)
	job.Error = "previous error"
	job.Retryable = true

	job.Start()

	assert.Equal(t, ImportJobStatusRunning, job.Status)
	assert.NotNil(t, job.StartedAt)
	assert.Empty(t, job.Error)
	assert.False(t, job.Retryable)
}

func TestImportJob_Complete(t *testing.T) {
	tests := []struct {
		name   string
		status integration.ImportStatus
		want   ImportJobStatus
	}{
		{"success", integration.ImportStatusSuccess, ImportJobStatusSuccess},
		{"partial", integration.ImportStatusPartial, ImportJobStatusPartial},
		{"no orders", integration.ImportStatusNoOrders, ImportJobStatusNoOrders},
		{"all orders failed", integration.ImportStatusFailed, ImportJobStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewImportJob(uuid.New(), 3)
			job.Start()
			start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
			result := &integration.ImportResult{
				WindowStart: start,
				WindowEnd:   start.Add(time.Hour),
				Status:      tt.status,
				Created:     []*trade.Sale{{}, {}},
				Failures:    []integration.ImportFailure{{ExternalOrderID: "X"}},
			}

			job.Complete(result)

			assert.Equal(t, tt.want, job.Status)
			assert.Equal(t, 2, job.CreatedCount)
			assert.Equal(t, 1, job.FailedCount)
			assert.Equal(t, start, job.WindowStart)
			assert.NotNil(t, job.CompletedAt)
			assert.False(t, job.ShouldRetry(), "completed runs are never retried")
			assert.True(t, job.IsFinished())
		})
	}
}

func TestImportJob_ShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		status     ImportJobStatus
		retryable  bool
		retryCount int
		maxRetries int
		expected   bool
	}{
		{"Failed with retries available", ImportJobStatusFailed, true, 0, 3, true},
		{"Failed max retries reached", ImportJobStatusFailed, true, 3, 3, false},
		{"Failed permanently", ImportJobStatusFailed, false, 0, 3, false},
		{"Success should not retry", ImportJobStatusSuccess, true, 0, 3, false},
		{"Running should not retry", ImportJobStatusRunning, true, 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &ImportJob{
				Status:     tt.status,
				Retryable:  tt.retryable,
				RetryCount: tt.retryCount,
				MaxRetries: tt.maxRetries,
			}
			assert.Equal(t, tt.expected, job.ShouldRetry())
		})
	}
}

func TestImportJob_ScheduleRetry_ExponentialBackoff(t *testing.T) {
	job := NewImportJob(uuid.New(), 10)
	job.Fail("unavailable", true)

	assert.Equal(t, time.Minute, job.ScheduleRetry(time.Minute))
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, ImportJobStatusPending, job.Status)
	assert.NotNil(t, job.NextRetryAt)
	assert.Empty(t, job.Error)

	assert.Equal(t, 2*time.Minute, job.ScheduleRetry(time.Minute))
	assert.Equal(t, 4*time.Minute, job.ScheduleRetry(time.Minute))

	// Capped
	job.RetryCount = 8
	assert.Equal(t, maxRetryDelay, job.ScheduleRetry(time.Minute))
}
