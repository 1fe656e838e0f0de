package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ErrMeterNil is returned when instruments are requested without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Attribute keys shared by the service's metrics
var (
	AttrChannelID    = attribute.Key("channel_id")
	AttrImportStatus = attribute.Key("import.status")
	AttrOrderOutcome = attribute.Key("order.outcome")
	AttrErrorKind    = attribute.Key("error.kind")
	AttrCurrency     = attribute.Key("currency")

	AttrDBPoolState = attribute.Key("db.pool.state")

	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
)

// HTTPDurationBuckets are bucket boundaries for HTTP request latency in
// seconds. Import requests run a whole import, hence the long tail.
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// ImportDurationBuckets are bucket boundaries for import run duration in seconds
var ImportDurationBuckets = []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 900}

// InstrumentSet creates the instruments of one component on a meter and
// keeps the creation errors, so a component declares all of its instruments
// and checks Err once. An instrument that failed to build is a no-op.
//
//	set, err := telemetry.NewInstrumentSet(meter)
//	runs := set.Counter("marketsync_import_runs_total", "Completed runs", "{runs}")
//	if err := set.Err(); err != nil { ... }
type InstrumentSet struct {
	meter metric.Meter
	errs  []error
}

// NewInstrumentSet returns a set creating instruments on meter
func NewInstrumentSet(meter metric.Meter) (*InstrumentSet, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	return &InstrumentSet{meter: meter}, nil
}

// Err returns every instrument creation error, joined
func (s *InstrumentSet) Err() error {
	return errors.Join(s.errs...)
}

func (s *InstrumentSet) fail(name string, err error) {
	s.errs = append(s.errs, fmt.Errorf("create instrument %s: %w", name, err))
}

// Counter creates a monotonic int64 counter
func (s *InstrumentSet) Counter(name, description, unit string) *Counter {
	c, err := s.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		s.fail(name, err)
		return &Counter{counter: noop.Int64Counter{}}
	}
	return &Counter{counter: c}
}

// UpDownCounter creates an int64 counter that may decrease
func (s *InstrumentSet) UpDownCounter(name, description, unit string) metric.Int64UpDownCounter {
	c, err := s.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		s.fail(name, err)
		return noop.Int64UpDownCounter{}
	}
	return c
}

// Histogram creates a float64 histogram, with explicit buckets when given
func (s *InstrumentSet) Histogram(name, description, unit string, buckets ...float64) *Histogram {
	opts := []metric.Float64HistogramOption{metric.WithDescription(description), metric.WithUnit(unit)}
	if len(buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(buckets...))
	}
	h, err := s.meter.Float64Histogram(name, opts...)
	if err != nil {
		s.fail(name, err)
		return &Histogram{histogram: noop.Float64Histogram{}}
	}
	return &Histogram{histogram: h}
}

// FloatGauge creates a float64 gauge holding the last recorded value
func (s *InstrumentSet) FloatGauge(name, description, unit string) *FloatGauge {
	g, err := s.meter.Float64Gauge(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		s.fail(name, err)
		return &FloatGauge{gauge: noop.Float64Gauge{}}
	}
	return &FloatGauge{gauge: g}
}

// Counter wraps an int64 counter
type Counter struct {
	counter metric.Int64Counter
}

// Add increments the counter by value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc increments the counter by one
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// Histogram wraps a float64 histogram
type Histogram struct {
	histogram metric.Float64Histogram
}

// RecordDuration records d in seconds
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// FloatGauge wraps a float64 gauge
type FloatGauge struct {
	gauge metric.Float64Gauge
}

// Record sets the gauge to value
func (g *FloatGauge) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	g.gauge.Record(ctx, value, metric.WithAttributes(attrs...))
}
