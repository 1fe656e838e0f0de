package dto

import (
	"errors"
	"net/http"

	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is used when query or path parameters fail validation
	ErrCodeValidation = "ERR_VALIDATION"
)

// Access error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
)

// Import error codes
const (
	// ErrCodeImportInProgress is used when another run holds the channel lock
	ErrCodeImportInProgress = "ERR_IMPORT_IN_PROGRESS"
	// ErrCodeChannelMisconfigured is used when the channel cannot talk to the marketplace
	ErrCodeChannelMisconfigured = "ERR_CHANNEL_MISCONFIGURED"
	// ErrCodeNoOrders is used when a run that requires orders found none
	ErrCodeNoOrders = "ERR_NO_ORDERS"
)

// Marketplace error codes
const (
	ErrCodeMarketplaceAuth        = "ERR_MARKETPLACE_AUTH"
	ErrCodeMarketplaceUnavailable = "ERR_MARKETPLACE_UNAVAILABLE"
	ErrCodeMarketplaceFailed      = "ERR_MARKETPLACE_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeImportInProgress:     http.StatusConflict,
	ErrCodeChannelMisconfigured: http.StatusUnprocessableEntity,
	ErrCodeNoOrders:             http.StatusUnprocessableEntity,

	ErrCodeMarketplaceAuth:        http.StatusBadGateway,
	ErrCodeMarketplaceUnavailable: http.StatusServiceUnavailable,
	ErrCodeMarketplaceFailed:      http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// errorCodeTable is checked in order; the first match wins
var errorCodeTable = []struct {
	target error
	code   string
}{
	{integration.ErrImportInProgress, ErrCodeImportInProgress},
	{integration.ErrNoOrders, ErrCodeNoOrders},
	{channel.ErrChannelNotFound, ErrCodeNotFound},
	{shared.ErrNotFound, ErrCodeNotFound},
	{shared.ErrAlreadyExists, ErrCodeAlreadyExists},
	{shared.ErrInvalidInput, ErrCodeBadRequest},
	{channel.ErrInvalidChannelSource, ErrCodeChannelMisconfigured},
	{channel.ErrMarketplaceNotConfigured, ErrCodeChannelMisconfigured},
	{channel.ErrInvalidCredentials, ErrCodeChannelMisconfigured},
	{integration.ErrUnsupportedSource, ErrCodeChannelMisconfigured},
	{integration.ErrPlatformAuthFailed, ErrCodeMarketplaceAuth},
	{integration.ErrPlatformTokenExpired, ErrCodeMarketplaceAuth},
	{integration.ErrPlatformUnavailable, ErrCodeMarketplaceUnavailable},
	{integration.ErrPlatformRateLimited, ErrCodeMarketplaceUnavailable},
	{integration.ErrOrderFetchFailed, ErrCodeMarketplaceFailed},
	{integration.ErrPlatformRequestFailed, ErrCodeMarketplaceFailed},
	{integration.ErrPlatformInvalidResponse, ErrCodeMarketplaceFailed},
}

// ErrorCodeFor classifies err into an API error code.
// Unknown errors map to ErrCodeInternal.
func ErrorCodeFor(err error) string {
	for _, e := range errorCodeTable {
		if errors.Is(err, e.target) {
			return e.code
		}
	}
	return ErrCodeInternal
}
