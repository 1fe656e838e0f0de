package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/marketsync/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// Marketplace Errors
// ---------------------------------------------------------------------------

var (
	// Transport errors
	ErrPlatformUnavailable     = errors.New("integration: marketplace temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: marketplace request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid marketplace response")
	ErrPlatformAuthFailed      = errors.New("integration: marketplace authentication failed")
	ErrPlatformTokenExpired    = errors.New("integration: marketplace token expired")
	ErrPlatformRateLimited     = errors.New("integration: marketplace rate limited")

	// Payload errors
	ErrItemNotFound        = errors.New("integration: marketplace item not found")
	ErrInvalidOrderPayload = errors.New("integration: invalid order payload")

	// Run errors
	ErrOrderFetchFailed  = errors.New("integration: fetching orders failed")
	ErrNoOrders          = errors.New("integration: no new orders")
	ErrImportInProgress  = errors.New("integration: an import is already running for this channel")
	ErrUnsupportedSource = errors.New("integration: unsupported channel source")
)

// NoOrdersError reports an empty import window. It matches ErrNoOrders.
type NoOrdersError struct {
	Since time.Time
}

// Error implements the error interface
func (e *NoOrdersError) Error() string {
	return fmt.Sprintf("integration: no new orders since %s", e.Since.UTC().Format(time.RFC3339))
}

// Is reports whether target is ErrNoOrders
func (e *NoOrdersError) Is(target error) bool {
	return target == ErrNoOrders
}

// ---------------------------------------------------------------------------
// Marketplace payloads
// ---------------------------------------------------------------------------

// Order is one marketplace order
type Order struct {
	// OrderID is the marketplace's order identifier
	OrderID string
	// Status is the marketplace order status, e.g. "Completed"
	Status string
	// CreatedTime is when the buyer placed the order
	CreatedTime time.Time
	// Currency of the order amounts
	Currency string
	// Total is the raw order total
	Total string
	// Buyer identifies the purchasing user
	Buyer Buyer
	// Address is the buyer's address for the order, including its phone
	Address PostalAddress
	// Lines are the purchased items
	Lines []LineItem
}

// Buyer is the marketplace user behind an order
type Buyer struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
}

// PostalAddress is an address as the marketplace reports it
type PostalAddress struct {
	Name            string
	Street1         string
	Street2         string
	City            string
	StateOrProvince string
	Country         string
	PostalCode      string
	Phone           string
}

// LineItem is one purchased item of an order. Quantity and price are the
// raw strings from the marketplace.
type LineItem struct {
	LineItemID       string
	ItemID           string
	Title            string
	SKU              string
	Quantity         string
	TransactionPrice string
}

// Item is the full listing detail of a marketplace item
type Item struct {
	ItemID        string
	Title         string
	Description   string
	SKU           string
	StartPrice    string
	BuyItNowPrice string
	Currency      string
}

// TokenState is the state of a marketplace auth token
type TokenState string

const (
	TokenStateActive  TokenState = "Active"
	TokenStateExpired TokenState = "Expired"
	TokenStateRevoked TokenState = "RevokedByeBay"
	TokenStateUnknown TokenState = "Unknown"
)

// TokenStatus reports the validity of the channel's auth token
type TokenStatus struct {
	Status         TokenState
	ExpirationTime time.Time
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// Marketplace is a client bound to one channel's credentials. Repeated
// elements of the marketplace response are always returned as slices.
type Marketplace interface {
	// FetchOrders returns the orders created in [from, to)
	FetchOrders(ctx context.Context, from, to time.Time) ([]Order, error)
	// FetchItemDetail returns ErrItemNotFound for unknown or ended items
	FetchItemDetail(ctx context.Context, itemID string) (*Item, error)
	FetchTokenStatus(ctx context.Context) (*TokenStatus, error)
}

// MarketplaceFactory builds a client for a channel's credentials
type MarketplaceFactory interface {
	ForChannel(ch *channel.Channel) (Marketplace, error)
}

// RunLock guards a channel against concurrent import runs
type RunLock interface {
	// TryAcquire returns the holder's token, or "" without error when
	// another run holds key
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Release frees key only while token still owns it. A run that outlived
	// its TTL cannot free the lock of the run that took over.
	Release(ctx context.Context, key, token string) error
}

// RunLockKey is the lock key for a channel's import run
func RunLockKey(ch *channel.Channel) string {
	return "import:channel:" + ch.ID.String()
}
