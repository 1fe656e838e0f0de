package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestRegisterDBPoolMetrics(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(4)

	reader, provider := newTestMeter(t)
	pm, err := RegisterDBPoolMetrics(db, provider.Meter("test"), zaptest.NewLogger(t))
	require.NoError(t, err)

	rm := collect(t, reader)

	maxOpen, ok := findMetric(rm, "db_pool_connections_max")
	require.True(t, ok)
	gauge, ok := maxOpen.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(4), gauge.DataPoints[0].Value)

	conns, ok := findMetric(rm, "db_pool_connections")
	require.True(t, ok)
	connGauge, ok := conns.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	states := map[string]bool{}
	for _, dp := range connGauge.DataPoints {
		v, ok := dp.Attributes.Value(AttrDBPoolState)
		require.True(t, ok)
		states[v.AsString()] = true
	}
	assert.Equal(t, map[string]bool{"idle": true, "in_use": true, "open": true}, states)

	require.NoError(t, pm.Unregister())
	assert.NoError(t, pm.Unregister())

	rm = collect(t, reader)
	_, ok = findMetric(rm, "db_pool_connections_max")
	assert.False(t, ok, "no observations after unregister")
}

func TestNewDBPoolMetrics_NilMeter(t *testing.T) {
	_, err := NewDBPoolMetrics(nil, nil, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}
