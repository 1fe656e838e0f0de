package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	return headerCarrier{msg: &msg}.Get(key)
}

func TestNewKafkaPublisher(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{})
	assert.ErrorIs(t, err, ErrNoBrokers)

	p, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"k1:9092", "k2:9092"}, ClientID: "marketsync"})
	require.NoError(t, err)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Contains(t, w.Addr.String(), "k1:9092")
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Empty(t, w.Topic)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, clientID: "marketsync"}

	event := struct {
		OrderID string `json:"order_id"`
	}{OrderID: "110-1"}
	require.NoError(t, p.Publish(context.Background(), "marketsync.sale.imported", "channel-1", event))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "marketsync.sale.imported", msg.Topic)
	assert.Equal(t, []byte("channel-1"), msg.Key)
	assert.JSONEq(t, `{"order_id":"110-1"}`, string(msg.Value))
	assert.Equal(t, "application/json", header(msg, "content-type"))
	assert.Equal(t, "marketsync", header(msg, "producer"))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_PropagatesTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "import")
	defer span.End()

	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	require.NoError(t, p.Publish(ctx, "marketsync.import.completed", "channel-1", map[string]int{"created": 1}))

	traceparent := header(w.messages[0], "traceparent")
	require.NotEmpty(t, traceparent)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestKafkaPublisher_Errors(t *testing.T) {
	brokerErr := errors.New("leader not available")
	p := &KafkaPublisher{writer: &fakeWriter{err: brokerErr}}

	err := p.Publish(context.Background(), "marketsync.sale.imported", "k", map[string]string{})
	assert.ErrorIs(t, err, brokerErr)
	assert.Contains(t, err.Error(), "publish to marketsync.sale.imported")

	err = p.Publish(context.Background(), "marketsync.sale.imported", "k", make(chan int))
	var unsupported *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
}

func TestHeaderCarrier_SetReplaces(t *testing.T) {
	msg := kafka.Message{}
	c := headerCarrier{msg: &msg}
	c.Set("traceparent", "a")
	c.Set("traceparent", "b")

	assert.Len(t, msg.Headers, 1)
	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
}
