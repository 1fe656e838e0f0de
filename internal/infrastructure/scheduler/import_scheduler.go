package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/marketsync/internal/infrastructure/logger"
)

// ---------------------------------------------------------------------------
// ImportSchedulerConfig
// ---------------------------------------------------------------------------

// ImportSchedulerConfig holds configuration for the import scheduler
type ImportSchedulerConfig struct {
	// Enabled indicates if scheduled imports run
	Enabled bool
	// Workers is the number of channels imported concurrently
	Workers int
	// QueueSize bounds the number of pending jobs
	QueueSize int
	// JobTimeout is the maximum time a run can take
	JobTimeout time.Duration
	// RetryAttempts is the number of retries for a failed run
	RetryAttempts int
	// RetryDelay is the base delay between retries (with exponential backoff)
	RetryDelay time.Duration
	// Interval is how often every channel is imported
	Interval time.Duration
}

// DefaultImportSchedulerConfig returns default configuration
func DefaultImportSchedulerConfig() ImportSchedulerConfig {
	return ImportSchedulerConfig{
		Enabled:       false,
		Workers:       4,
		QueueSize:     100,
		JobTimeout:    15 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
		Interval:      15 * time.Minute,
	}
}

// Validate reports the first out-of-range field, wrapped in ErrInvalidConfig
func (c *ImportSchedulerConfig) Validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.JobTimeout <= 0:
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	case c.RetryAttempts < 0:
		return fmt.Errorf("%w: retry attempts must not be negative", ErrInvalidConfig)
	case c.RetryAttempts > 0 && c.RetryDelay <= 0:
		return fmt.Errorf("%w: retry delay must be positive when retrying", ErrInvalidConfig)
	}
	return nil
}

// ---------------------------------------------------------------------------
// ImportScheduler
// ---------------------------------------------------------------------------

// ImportScheduler runs channel imports on a pool of workers. A channel has
// at most one job queued or running at a time.
type ImportScheduler struct {
	config   ImportSchedulerConfig
	executor ImportExecutor
	logger   *zap.Logger

	jobs      chan *ImportJob
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	active    map[uuid.UUID]*ImportJob

	// Job history for monitoring (in-memory, limited size)
	historyMu  sync.RWMutex
	history    []*ImportJob
	maxHistory int
}

// NewImportScheduler creates a new import scheduler
func NewImportScheduler(config ImportSchedulerConfig, executor ImportExecutor, logger *zap.Logger) (*ImportScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ImportScheduler{
		config:     config,
		executor:   executor,
		logger:     logger,
		jobs:       make(chan *ImportJob, config.QueueSize),
		active:     make(map[uuid.UUID]*ImportJob),
		history:    make([]*ImportJob, 0, 100),
		maxHistory: 100,
	}, nil
}

// Start starts the worker pool
func (s *ImportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(s.ctx, i)
	}

	s.logger.Info("Import scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running imports and waits for the workers
func (s *ImportScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Import scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Import scheduler stop timed out")
		return ctx.Err()
	}
}

// ScheduleImport queues an import of the channel
func (s *ImportScheduler) ScheduleImport(channelID uuid.UUID) (*ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil, ErrSchedulerNotRunning
	}
	if _, busy := s.active[channelID]; busy {
		return nil, ErrJobAlreadyQueued
	}

	job := NewImportJob(channelID, s.config.RetryAttempts)
	if err := s.enqueueLocked(job); err != nil {
		return nil, err
	}
	s.active[channelID] = job
	s.logger.Debug("Import job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("channel_id", channelID.String()),
	)
	return job, nil
}

// enqueueLocked puts a job on the queue without blocking. s.mu must be held.
func (s *ImportScheduler) enqueueLocked(job *ImportJob) error {
	select {
	case s.jobs <- job:
		return nil
	default:
		return ErrJobQueueFull
	}
}

// worker processes jobs from the queue
func (s *ImportScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

// processJob executes a single job
func (s *ImportScheduler) processJob(ctx context.Context, job *ImportJob, workerID int) {
	job.Start()
	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("channel_id", job.ChannelID.String()),
	)
	log.Info("Processing import job", zap.Int("retry_count", job.RetryCount))

	jobCtx := logger.WithJobID(ctx, job.ID.String())
	jobCtx = logger.WithChannelID(jobCtx, job.ChannelID.String())
	jobCtx, cancel := context.WithTimeout(jobCtx, s.config.JobTimeout)
	err := s.executor.Execute(jobCtx, job)
	cancel()

	if err == nil {
		log.Info("Import job completed",
			zap.String("status", string(job.Status)),
			zap.Int("created", job.CreatedCount),
			zap.Int("skipped", job.SkippedCount),
			zap.Int("failed", job.FailedCount),
		)
		s.finish(job)
		return
	}

	job.Fail(err.Error(), isRetryable(err))
	log.Error("Import job failed", zap.Error(err), zap.Bool("retryable", job.Retryable))

	if !job.ShouldRetry() || ctx.Err() != nil {
		s.finish(job)
		return
	}

	delay := job.ScheduleRetry(s.config.RetryDelay)
	log.Info("Import job scheduled for retry",
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Duration("delay", delay),
	)
	s.wg.Add(1)
	go s.retryAfter(ctx, job, delay)
}

// retryAfter re-queues a job once its backoff has elapsed
func (s *ImportScheduler) retryAfter(ctx context.Context, job *ImportJob, delay time.Duration) {
	defer s.wg.Done()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		job.Fail("scheduler stopped before retry", false)
		s.finish(job)
		return
	case <-timer.C:
	}

	s.mu.Lock()
	err := ErrSchedulerNotRunning
	if s.isRunning {
		err = s.enqueueLocked(job)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("Failed to re-queue import job for retry",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		job.Fail(err.Error(), false)
		s.finish(job)
	}
}

// finish releases the channel and records the job in history
func (s *ImportScheduler) finish(job *ImportJob) {
	s.mu.Lock()
	if s.active[job.ChannelID] == job {
		delete(s.active, job.ChannelID)
	}
	s.mu.Unlock()

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*ImportJob{job}, s.history...)
	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// GetJobHistory returns recent job history, newest first
func (s *ImportScheduler) GetJobHistory(limit int) []*ImportJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	result := make([]*ImportJob, limit)
	copy(result, s.history[:limit])
	return result
}

// GetJobHistoryByChannel returns job history for a specific channel
func (s *ImportScheduler) GetJobHistoryByChannel(channelID uuid.UUID, limit int) []*ImportJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	result := make([]*ImportJob, 0, limit)
	for _, job := range s.history {
		if job.ChannelID == channelID {
			result = append(result, job)
			if len(result) >= limit {
				break
			}
		}
	}
	return result
}

// IsActive reports whether the channel has a job queued or running
func (s *ImportScheduler) IsActive(channelID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[channelID]
	return ok
}
