package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer of the service's own spans
const TracerName = "marketsync"

// Span attribute keys set along the import path
var (
	AttrComponent = attribute.Key("marketsync.component")
	AttrOrderID   = attribute.Key("order.id")
	AttrSaleID    = attribute.Key("sale.id")
	AttrCreated   = attribute.Key("import.created")
)

// GetTraceID returns the trace id carried by ctx, "" without a valid span
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// StartOperation starts an internal span named "<component>.<operation>".
// Close it with EndOperation.
//
//	ctx, span := telemetry.StartOperation(ctx, "order_import", "run", telemetry.AttrChannelID.String(id))
//	defer func() { telemetry.EndOperation(span, err) }()
func StartOperation(ctx context.Context, component, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{AttrComponent.String(component)}, attrs...)
	return otel.Tracer(TracerName).Start(ctx, component+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndOperation sets the span status from err and ends the span. An err
// matching one of expected is an outcome, not a failure: it is added as an
// event and the span stays unset.
func EndOperation(span trace.Span, err error, expected ...error) {
	if span == nil {
		return
	}
	defer span.End()

	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	for _, target := range expected {
		if errors.Is(err, target) {
			span.AddEvent("outcome", trace.WithAttributes(attribute.String("reason", err.Error())))
			return
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
