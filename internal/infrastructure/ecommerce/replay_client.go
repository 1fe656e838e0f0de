package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erp/marketsync/internal/domain/integration"
)

// Replay file layout
const (
	replayOrdersFile      = "orders.json"
	replayItemsDir        = "items"
	replayTokenStatusFile = "token_status.json"
)

// ReplayClient implements integration.Marketplace from recorded Trading
// API responses in JSON form. It serves demos and tests without eBay
// credentials.
//
// The directory holds orders.json (a GetOrders response), items/<id>.json
// (GetItem responses) and token_status.json (a GetTokenStatus response).
type ReplayClient struct {
	dir string
}

// NewReplayClient creates a client reading from dir
func NewReplayClient(dir string) (*ReplayClient, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("replay: %s is not a directory", dir)
	}
	return &ReplayClient{dir: dir}, nil
}

// FetchOrders returns the recorded orders created in [from, to). Orders
// without a creation time are always returned.
func (c *ReplayClient) FetchOrders(_ context.Context, from, to time.Time) ([]integration.Order, error) {
	var resp GetOrdersResponse
	found, err := c.read(replayOrdersFile, &resp)
	if err != nil || !found {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, mapEbayError("GetOrders", resp.firstError())
	}

	var orders []integration.Order
	for _, o := range ordersOf(&resp) {
		if !o.CreatedTime.IsZero() && (o.CreatedTime.Before(from) || !o.CreatedTime.Before(to)) {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// FetchItemDetail returns the recorded item
func (c *ReplayClient) FetchItemDetail(_ context.Context, itemID string) (*integration.Item, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" || strings.ContainsAny(itemID, `/\`) {
		return nil, integration.ErrItemNotFound
	}
	var resp GetItemResponse
	found, err := c.read(filepath.Join(replayItemsDir, itemID+".json"), &resp)
	if err != nil {
		return nil, err
	}
	if !found || resp.Item == nil {
		return nil, fmt.Errorf("%w: %s", integration.ErrItemNotFound, itemID)
	}
	if !resp.IsSuccess() {
		return nil, mapEbayError("GetItem", resp.firstError())
	}
	return resp.Item.toItem(), nil
}

// FetchTokenStatus returns the recorded token status, or Unknown when
// none was recorded
func (c *ReplayClient) FetchTokenStatus(context.Context) (*integration.TokenStatus, error) {
	var resp GetTokenStatusResponse
	found, err := c.read(replayTokenStatusFile, &resp)
	if err != nil {
		return nil, err
	}
	if !found || resp.TokenStatus == nil {
		return &integration.TokenStatus{Status: integration.TokenStateUnknown}, nil
	}
	return resp.TokenStatus.toTokenStatus(), nil
}

// read decodes a replay file. A missing file is reported as not found.
func (c *ReplayClient) read(name string, out any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", integration.ErrPlatformInvalidResponse, name, err)
	}
	return true, nil
}

// Ensure ReplayClient implements integration.Marketplace
var _ integration.Marketplace = (*ReplayClient)(nil)
