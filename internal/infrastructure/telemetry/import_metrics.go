package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
)

// Order outcomes
const (
	OrderOutcomeCreated = "created"
	OrderOutcomeSkipped = "skipped"
	OrderOutcomeFailed  = "failed"
)

// ImportMetrics records the outcome of marketplace import runs.
type ImportMetrics struct {
	logger *zap.Logger

	runsTotal      *Counter
	runErrorsTotal *Counter
	ordersTotal    *Counter
	salesAmount    *Counter
	runDuration    *Histogram
	lastWindowEnd  *FloatGauge
}

// NewImportMetrics creates the import run instruments on meter.
func NewImportMetrics(meter metric.Meter, logger *zap.Logger) (*ImportMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	set, err := NewInstrumentSet(meter)
	if err != nil {
		return nil, err
	}
	m := &ImportMetrics{
		logger: logger,
		runsTotal: set.Counter("marketsync_import_runs_total",
			"Completed import runs by status", "{runs}"),
		runErrorsTotal: set.Counter("marketsync_import_run_errors_total",
			"Import runs that failed before processing orders", "{runs}"),
		ordersTotal: set.Counter("marketsync_import_orders_total",
			"Orders seen by import runs by outcome", "{orders}"),
		salesAmount: set.Counter("marketsync_import_sales_amount_total",
			"Total amount of imported sales in minor currency units", "{cents}"),
		runDuration: set.Histogram("marketsync_import_run_duration_seconds",
			"Duration of import runs", "s", ImportDurationBuckets...),
		lastWindowEnd: set.FloatGauge("marketsync_import_last_window_end_seconds",
			"Unix time of the last imported window end", "s"),
	}
	if err := set.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRun records a completed run
func (m *ImportMetrics) RecordRun(ctx context.Context, result *integration.ImportResult) {
	channelAttr := AttrChannelID.String(result.ChannelID.String())

	m.runsTotal.Inc(ctx, channelAttr, AttrImportStatus.String(result.Status.String()))
	m.runDuration.RecordDuration(ctx, result.Duration(), channelAttr)
	m.lastWindowEnd.Record(ctx, float64(result.WindowEnd.Unix()), channelAttr)

	m.addOrders(ctx, channelAttr, OrderOutcomeCreated, len(result.Created))
	m.addOrders(ctx, channelAttr, OrderOutcomeSkipped, len(result.Skipped))
	m.addOrders(ctx, channelAttr, OrderOutcomeFailed, len(result.Failures))

	for _, sale := range result.Created {
		m.salesAmount.Add(ctx, toMinorUnits(sale.TotalAmount()), channelAttr, AttrCurrency.String(sale.Currency))
	}
}

// RecordRunError records a run that failed as a whole
func (m *ImportMetrics) RecordRunError(ctx context.Context, channelID uuid.UUID, err error) {
	kind := ErrorKind(err)
	m.runErrorsTotal.Inc(ctx,
		AttrChannelID.String(channelID.String()),
		AttrErrorKind.String(kind),
	)
	m.logger.Debug("Recorded import run error",
		zap.String("channel_id", channelID.String()),
		zap.String("error_kind", kind),
	)
}

func (m *ImportMetrics) addOrders(ctx context.Context, channelAttr attribute.KeyValue, outcome string, n int) {
	if n == 0 {
		return
	}
	m.ordersTotal.Add(ctx, int64(n), channelAttr, AttrOrderOutcome.String(outcome))
}

// toMinorUnits converts an amount to cents
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// ErrorKind classifies a run error for metric labels
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, integration.ErrImportInProgress):
		return "locked"
	case errors.Is(err, integration.ErrNoOrders):
		return "no_orders"
	case errors.Is(err, channel.ErrInvalidChannelSource),
		errors.Is(err, channel.ErrMarketplaceNotConfigured),
		errors.Is(err, integration.ErrUnsupportedSource):
		return "config"
	case errors.Is(err, integration.ErrPlatformAuthFailed),
		errors.Is(err, integration.ErrPlatformTokenExpired):
		return "auth"
	case errors.Is(err, integration.ErrOrderFetchFailed):
		return "fetch"
	default:
		return "internal"
	}
}
