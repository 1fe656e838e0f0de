package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erp/marketsync/internal/domain/channel"
)

// ChannelLister lists the channels of a source
type ChannelLister interface {
	FindBySource(ctx context.Context, source channel.Source) ([]channel.Channel, error)
}

// ImportCronTrigger schedules an import of every marketplace channel at a
// fixed interval
type ImportCronTrigger struct {
	interval  time.Duration
	scheduler *ImportScheduler
	channels  ChannelLister
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewImportCronTrigger creates a new import cron trigger
func NewImportCronTrigger(
	interval time.Duration,
	scheduler *ImportScheduler,
	channels ChannelLister,
	logger *zap.Logger,
) *ImportCronTrigger {
	return &ImportCronTrigger{
		interval:  interval,
		scheduler: scheduler,
		channels:  channels,
		logger:    logger,
	}
}

// Start starts the trigger loop. The first tick runs immediately.
func (c *ImportCronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Import cron trigger started", zap.Duration("interval", c.interval))
	return nil
}

// Stop stops the trigger loop
func (c *ImportCronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Import cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *ImportCronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.ScheduleAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.ScheduleAll(ctx)
		}
	}
}

// ScheduleAll queues an import for every configured eBay channel and
// returns the number of jobs queued. Channels with a job in flight are
// left alone.
func (c *ImportCronTrigger) ScheduleAll(ctx context.Context) int {
	channels, err := c.channels.FindBySource(ctx, channel.SourceEbay)
	if err != nil {
		c.logger.Error("Failed to list marketplace channels", zap.Error(err))
		return 0
	}

	scheduled := 0
	for i := range channels {
		ch := &channels[i]
		if ch.Marketplace == nil {
			continue
		}

		_, err := c.scheduler.ScheduleImport(ch.ID)
		switch {
		case err == nil:
			scheduled++
		case errors.Is(err, ErrJobAlreadyQueued):
			c.logger.Debug("Import already in flight", zap.String("channel_id", ch.ID.String()))
		default:
			c.logger.Error("Failed to schedule import",
				zap.String("channel_id", ch.ID.String()),
				zap.Error(err),
			)
		}
	}

	if scheduled > 0 {
		c.logger.Info("Scheduled channel imports", zap.Int("count", scheduled))
	}
	return scheduled
}
