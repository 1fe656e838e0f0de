package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appintegration "github.com/erp/marketsync/internal/application/integration"
	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
)

// ImportExecutor executes import jobs
type ImportExecutor interface {
	// Execute runs the channel's import and records the outcome on job
	Execute(ctx context.Context, job *ImportJob) error
}

// OrderImporter runs one import of a channel
type OrderImporter interface {
	ImportOrders(ctx context.Context, channelID uuid.UUID, opts appintegration.ImportOptions) (*integration.ImportResult, error)
}

// ImportExecutorImpl implements ImportExecutor over the order import service
type ImportExecutorImpl struct {
	importer OrderImporter
	logger   *zap.Logger
}

// NewImportExecutor creates a new import executor
func NewImportExecutor(importer OrderImporter, logger *zap.Logger) *ImportExecutorImpl {
	return &ImportExecutorImpl{
		importer: importer,
		logger:   logger,
	}
}

// Execute runs the import. Scheduled runs never require orders; an empty
// window completes the job with NO_ORDERS.
func (e *ImportExecutorImpl) Execute(ctx context.Context, job *ImportJob) error {
	result, err := e.importer.ImportOrders(ctx, job.ChannelID, appintegration.ImportOptions{})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrImportTimeout, err)
		}
		return err
	}

	job.Complete(result)
	e.logger.Debug("Import run finished",
		zap.String("job_id", job.ID.String()),
		zap.String("channel_id", job.ChannelID.String()),
		zap.String("status", result.Status.String()),
		zap.Duration("duration", result.Duration()),
	)
	return nil
}

// isRetryable reports whether a failed run may succeed on another attempt.
// Configuration and credential problems need an operator, and a held lock
// means another run already covers the window.
func isRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, channel.ErrChannelNotFound),
		errors.Is(err, channel.ErrInvalidChannelSource),
		errors.Is(err, channel.ErrMarketplaceNotConfigured),
		errors.Is(err, integration.ErrUnsupportedSource),
		errors.Is(err, integration.ErrImportInProgress),
		errors.Is(err, integration.ErrNoOrders),
		errors.Is(err, integration.ErrPlatformAuthFailed),
		errors.Is(err, integration.ErrPlatformTokenExpired):
		return false
	}
	return true
}

// Ensure ImportExecutorImpl implements ImportExecutor
var _ ImportExecutor = (*ImportExecutorImpl)(nil)
