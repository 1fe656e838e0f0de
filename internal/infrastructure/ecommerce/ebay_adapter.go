package ecommerce

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/erp/marketsync/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from the Trading API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxOrderPages bounds GetOrders pagination
const maxOrderPages = 500

// Trading API error codes with a dedicated domain error
const (
	ebayErrInvalidToken     = "931"
	ebayErrHardExpiredToken = "932"
	ebayErrTokenRevoked     = "16110"
	ebayErrItemNotFound     = "17"
	ebayErrItemNotAvailable = "35"
	ebayErrCallLimit        = "518"
)

// EbayAdapter implements integration.Marketplace over the eBay Trading API
// for one channel's credentials
type EbayAdapter struct {
	config     *EbayConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewEbayAdapter creates a new eBay adapter with the given configuration
func NewEbayAdapter(config *EbayConfig) (*EbayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &EbayAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// WithHTTPClient replaces the HTTP client, e.g. to add tracing transports
func (a *EbayAdapter) WithHTTPClient(client *http.Client) *EbayAdapter {
	a.httpClient = client
	return a
}

// WithRateLimiter makes every call wait for a token from l. Adapters of
// one keyset share a limiter, since eBay meters calls per application.
func (a *EbayAdapter) WithRateLimiter(l *rate.Limiter) *EbayAdapter {
	a.limiter = l
	return a
}

func (a *EbayAdapter) credentials() EbayRequesterCredentials {
	return EbayRequesterCredentials{EBayAuthToken: a.config.AuthToken}
}

// FetchOrders retrieves the seller's orders created in the window,
// following HasMoreOrders across pages
func (a *EbayAdapter) FetchOrders(ctx context.Context, from, to time.Time) ([]integration.Order, error) {
	var orders []integration.Order
	for page := 1; page <= maxOrderPages; page++ {
		req := &GetOrdersRequest{
			RequesterCredentials: a.credentials(),
			CreateTimeFrom:       from.UTC().Format(ebayTimeLayout),
			CreateTimeTo:         to.UTC().Format(ebayTimeLayout),
			OrderRole:            "Seller",
			Pagination: EbayPagination{
				EntriesPerPage: a.config.EntriesPerPage,
				PageNumber:     page,
			},
		}
		var resp GetOrdersResponse
		if err := a.call(ctx, "GetOrders", req, &resp); err != nil {
			return nil, err
		}
		orders = append(orders, ordersOf(&resp)...)
		if !resp.HasMoreOrders {
			return orders, nil
		}
	}
	return nil, fmt.Errorf("%w: more than %d pages of orders", integration.ErrPlatformInvalidResponse, maxOrderPages)
}

// FetchItemDetail retrieves a listing with its description and prices
func (a *EbayAdapter) FetchItemDetail(ctx context.Context, itemID string) (*integration.Item, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, integration.ErrItemNotFound
	}
	req := &GetItemRequest{
		RequesterCredentials: a.credentials(),
		ItemID:               itemID,
		DetailLevel:          "ReturnAll",
	}
	var resp GetItemResponse
	if err := a.call(ctx, "GetItem", req, &resp); err != nil {
		return nil, err
	}
	if resp.Item == nil {
		return nil, fmt.Errorf("%w: %s", integration.ErrItemNotFound, itemID)
	}
	return resp.Item.toItem(), nil
}

// FetchTokenStatus retrieves the status of the channel's auth token.
// Expired and revoked tokens are reported in the status, not as errors.
func (a *EbayAdapter) FetchTokenStatus(ctx context.Context) (*integration.TokenStatus, error) {
	req := &GetTokenStatusRequest{RequesterCredentials: a.credentials()}
	var resp GetTokenStatusResponse
	if err := a.call(ctx, "GetTokenStatus", req, &resp); err != nil {
		return nil, err
	}
	if resp.TokenStatus == nil {
		return nil, fmt.Errorf("%w: missing TokenStatus", integration.ErrPlatformInvalidResponse)
	}
	return resp.TokenStatus.toTokenStatus(), nil
}

// call executes a Trading API call and decodes its response into out
func (a *EbayAdapter) call(ctx context.Context, callName string, in any, out ebayEnvelope) error {
	body, err := a.doRequest(ctx, callName, in)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to parse %s response: %v", integration.ErrPlatformInvalidResponse, callName, err)
	}
	env := out.envelope()
	if env.IsSuccess() {
		return nil
	}
	return mapEbayError(callName, env.firstError())
}

// doRequest posts an XML request to the Trading API
func (a *EbayAdapter) doRequest(ctx context.Context, callName string, in any) ([]byte, error) {
	payload, err := xml.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("ebay: failed to encode %s request: %w", callName, err)
	}
	payload = append([]byte(xml.Header), payload...)

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, ctx.Err())
			}
			// the deadline ends before a token frees up
			return nil, fmt.Errorf("%w: waiting for %s call budget: %v", integration.ErrPlatformRateLimited, callName, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.APIBaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ebay: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("X-EBAY-API-CALL-NAME", callName)
	req.Header.Set("X-EBAY-API-COMPATIBILITY-LEVEL", strconv.Itoa(a.config.CompatibilityLevel))
	req.Header.Set("X-EBAY-API-SITEID", strconv.Itoa(a.config.SiteID))
	req.Header.Set("X-EBAY-API-APP-NAME", a.config.AppID)
	req.Header.Set("X-EBAY-API-DEV-NAME", a.config.DevID)
	req.Header.Set("X-EBAY-API-CERT-NAME", a.config.CertID)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("ebay: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRateLimited, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, resp.StatusCode)
	}
	return body, nil
}

// mapEbayError converts a failed Ack into a domain error
func mapEbayError(callName string, e *EbayError) error {
	if e == nil {
		return fmt.Errorf("%w: %s failed without error detail", integration.ErrPlatformRequestFailed, callName)
	}
	msg := e.LongMessage
	if msg == "" {
		msg = e.ShortMessage
	}

	var sentinel error
	switch e.ErrorCode {
	case ebayErrInvalidToken, ebayErrTokenRevoked:
		sentinel = integration.ErrPlatformAuthFailed
	case ebayErrHardExpiredToken:
		sentinel = integration.ErrPlatformTokenExpired
	case ebayErrItemNotFound, ebayErrItemNotAvailable:
		sentinel = integration.ErrItemNotFound
	case ebayErrCallLimit:
		sentinel = integration.ErrPlatformRateLimited
	default:
		sentinel = integration.ErrPlatformRequestFailed
	}
	return fmt.Errorf("%w: %s error %s: %s", sentinel, callName, e.ErrorCode, msg)
}

// Ensure EbayAdapter implements integration.Marketplace
var _ integration.Marketplace = (*EbayAdapter)(nil)
