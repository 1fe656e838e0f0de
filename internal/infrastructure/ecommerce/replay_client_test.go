package ecommerce

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/marketsync/internal/domain/integration"
)

func writeReplayFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewReplayClient_MissingDir(t *testing.T) {
	_, err := NewReplayClient(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestReplayClient_FetchOrders(t *testing.T) {
	dir := t.TempDir()
	// A single order and a single transaction are plain objects, not lists
	writeReplayFile(t, dir, replayOrdersFile, `{
  "Ack": "Success",
  "HasMoreOrders": false,
  "OrderArray": {
    "Order": [
      {
        "OrderID": "A",
        "CreatedTime": "2024-03-02T10:00:00.000Z",
        "BuyerUserID": "buyer_a",
        "TransactionArray": {"Transaction": {"Item": {"ItemID": "1001"}, "QuantityPurchased": "1", "TransactionPrice": {"value": "5.00", "currencyID": "USD"}}}
      },
      {
        "OrderID": "OLD",
        "CreatedTime": "2024-02-01T10:00:00.000Z",
        "TransactionArray": {"Transaction": []}
      },
      {
        "OrderID": "B",
        "CreatedTime": "2024-03-09T10:00:00.000Z",
        "TransactionArray": {"Transaction": [{"Item": {"ItemID": "1001"}}, {"Item": {"ItemID": "1002"}}]}
      }
    ]
  }
}`)
	client, err := NewReplayClient(dir)
	require.NoError(t, err)

	orders, err := client.FetchOrders(context.Background(),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "A", orders[0].OrderID)
	require.Len(t, orders[0].Lines, 1)
	assert.Equal(t, "USD", orders[0].Currency)
	assert.Equal(t, "B", orders[1].OrderID)
	assert.Len(t, orders[1].Lines, 2)
}

func TestReplayClient_FetchOrders_SingleOrderObject(t *testing.T) {
	dir := t.TempDir()
	writeReplayFile(t, dir, replayOrdersFile, `{"Ack":"Success","OrderArray":{"Order":{"OrderID":"ONLY","TransactionArray":{"Transaction":{"Item":{"ItemID":"7"}}}}}}`)
	client, err := NewReplayClient(dir)
	require.NoError(t, err)

	orders, err := client.FetchOrders(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ONLY", orders[0].OrderID)
	require.Len(t, orders[0].Lines, 1)
	assert.Equal(t, "7", orders[0].Lines[0].ItemID)
}

func TestReplayClient_FetchOrders_NoFile(t *testing.T) {
	client, err := NewReplayClient(t.TempDir())
	require.NoError(t, err)

	orders, err := client.FetchOrders(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestReplayClient_FetchOrders_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeReplayFile(t, dir, replayOrdersFile, `{"OrderArray": "nope"`)
	client, err := NewReplayClient(dir)
	require.NoError(t, err)

	_, err = client.FetchOrders(context.Background(), time.Now().Add(-time.Hour), time.Now())
	assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
}

func TestReplayClient_FetchOrders_RecordedFailure(t *testing.T) {
	dir := t.TempDir()
	writeReplayFile(t, dir, replayOrdersFile, `{"Ack":"Failure","Errors":{"ErrorCode":"932","ShortMessage":"expired"}}`)
	client, err := NewReplayClient(dir)
	require.NoError(t, err)

	_, err = client.FetchOrders(context.Background(), time.Now().Add(-time.Hour), time.Now())
	assert.ErrorIs(t, err, integration.ErrPlatformTokenExpired)
}

func TestReplayClient_FetchItemDetail(t *testing.T) {
	dir := t.TempDir()
	writeReplayFile(t, dir, filepath.Join(replayItemsDir, "1001.json"), `{
  "Ack": "Success",
  "Item": {"ItemID": "1001", "Title": "Brass Lamp", "StartPrice": {"value": "500.00", "currencyID": "USD"}, "BuyItNowPrice": {"value": "650.00"}}
}`)
	client, err := NewReplayClient(dir)
	require.NoError(t, err)

	item, err := client.FetchItemDetail(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "Brass Lamp", item.Title)
	assert.Equal(t, "650.00", item.BuyItNowPrice)
	assert.Equal(t, "USD", item.Currency)

	_, err = client.FetchItemDetail(context.Background(), "9999")
	assert.ErrorIs(t, err, integration.ErrItemNotFound)

	_, err = client.FetchItemDetail(context.Background(), "../orders")
	assert.ErrorIs(t, err, integration.ErrItemNotFound)
}

func TestReplayClient_FetchTokenStatus(t *testing.T) {
	dir := t.TempDir()
	client, err := NewReplayClient(dir)
	require.NoError(t, err)

	status, err := client.FetchTokenStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, integration.TokenStateUnknown, status.Status)

	writeReplayFile(t, dir, replayTokenStatusFile, `{"Ack":"Success","TokenStatus":{"Status":"Expired","ExpirationTime":"2024-01-01T00:00:00.000Z"}}`)
	status, err = client.FetchTokenStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, integration.TokenStateExpired, status.Status)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), status.ExpirationTime)
}
