package telemetry

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBPoolMetrics exports connection pool statistics as observable gauges.
type DBPoolMetrics struct {
	sqlDB        *sql.DB
	registration metric.Registration
	logger       *zap.Logger
}

// NewDBPoolMetrics registers pool gauges for sqlDB on meter. Values are read
// from sql.DBStats on every collection.
func NewDBPoolMetrics(meter metric.Meter, sqlDB *sql.DB, logger *zap.Logger) (*DBPoolMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	connections, err := meter.Int64ObservableGauge(
		"db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}
	maxOpen, err := meter.Int64ObservableGauge(
		"db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}
	waitCount, err := meter.Int64ObservableCounter(
		"db_pool_wait_total",
		metric.WithDescription("Total number of connections waited for"),
		metric.WithUnit("{wait}"),
	)
	if err != nil {
		return nil, err
	}

	m := &DBPoolMetrics{sqlDB: sqlDB, logger: logger}
	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := m.sqlDB.Stats()
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.OpenConnections), metric.WithAttributes(AttrDBPoolState.String("open")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waitCount, stats.WaitCount)
		return nil
	}, connections, maxOpen, waitCount)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RegisterDBPoolMetrics registers pool gauges for the connection behind db.
func RegisterDBPoolMetrics(db *gorm.DB, meter metric.Meter, logger *zap.Logger) (*DBPoolMetrics, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return NewDBPoolMetrics(meter, sqlDB, logger)
}

// Unregister stops reporting pool statistics.
func (m *DBPoolMetrics) Unregister() error {
	if m.registration == nil {
		return nil
	}
	err := m.registration.Unregister()
	m.registration = nil
	if err != nil {
		m.logger.Warn("Failed to unregister pool metrics", zap.Error(err))
	}
	return err
}
