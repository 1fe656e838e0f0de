package scheduler

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/marketsync/internal/domain/integration"
)

// maxRetryDelay caps the exponential backoff between retries
const maxRetryDelay = 30 * time.Minute

// ImportJobStatus represents the status of an import job
type ImportJobStatus string

const (
	ImportJobStatusPending  ImportJobStatus = "PENDING"
	ImportJobStatusRunning  ImportJobStatus = "RUNNING"
	ImportJobStatusSuccess  ImportJobStatus = "SUCCESS"
	ImportJobStatusPartial  ImportJobStatus = "PARTIAL"
	ImportJobStatusNoOrders ImportJobStatus = "NO_ORDERS"
	ImportJobStatusFailed   ImportJobStatus = "FAILED"
)

// ImportJob is one scheduled import run of a channel
type ImportJob struct {
	ID          uuid.UUID
	ChannelID   uuid.UUID
	Status      ImportJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
	// Retryable is false for failures another attempt cannot fix
	Retryable bool

	// Run results
	WindowStart  time.Time
	WindowEnd    time.Time
	CreatedCount int
	SkippedCount int
	FailedCount  int
}

// NewImportJob creates a new import job for a channel
func NewImportJob(channelID uuid.UUID, maxRetries int) *ImportJob {
	return &ImportJob{
		ID:         uuid.New(),
		ChannelID:  channelID,
		Status:     ImportJobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *ImportJob) Start() {
	now := time.Now()
	j.Status = ImportJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
	j.Retryable = false
}

// Complete records the run's result
func (j *ImportJob) Complete(result *integration.ImportResult) {
	now := time.Now()
	j.CompletedAt = &now
	j.WindowStart = result.WindowStart
	j.WindowEnd = result.WindowEnd
	j.CreatedCount = len(result.Created)
	j.SkippedCount = len(result.Skipped)
	j.FailedCount = len(result.Failures)

	switch result.Status {
	case integration.ImportStatusSuccess:
		j.Status = ImportJobStatusSuccess
	case integration.ImportStatusPartial:
		j.Status = ImportJobStatusPartial
	case integration.ImportStatusNoOrders:
		j.Status = ImportJobStatusNoOrders
	default:
		// Every order failed on its own; the window is consumed
		j.Status = ImportJobStatusFailed
	}
}

// Fail marks the job as failed
func (j *ImportJob) Fail(err string, retryable bool) {
	now := time.Now()
	j.Status = ImportJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
	j.Retryable = retryable
}

// ShouldRetry returns true if the job should be retried
func (j *ImportJob) ShouldRetry() bool {
	return j.Status == ImportJobStatusFailed && j.Retryable && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff and
// returns the delay
func (j *ImportJob) ScheduleRetry(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	j.Status = ImportJobStatusPending
	// Exponential backoff: baseDelay * 2^(retryCount-1)
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > maxRetryDelay || delay <= 0 {
		delay = maxRetryDelay
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
	return delay
}

// IsFinished returns true once the job will not run again
func (j *ImportJob) IsFinished() bool {
	switch j.Status {
	case ImportJobStatusPending, ImportJobStatusRunning:
		return false
	}
	return !j.ShouldRetry()
}
