package ecommerce

import (
	"errors"

	"github.com/erp/marketsync/internal/domain/channel"
)

// EbayConfig holds configuration for one eBay Trading API account
type EbayConfig struct {
	// AppID, DevID and CertID are the developer keyset
	AppID  string
	DevID  string
	CertID string
	// AuthToken is the seller's Auth'n'Auth token
	AuthToken string
	// APIBaseURL is the Trading API endpoint (production or sandbox)
	APIBaseURL string
	// IsSandbox indicates if this is a sandbox environment
	IsSandbox bool
	// SiteID is the eBay site the calls are made against (0 = US)
	SiteID int
	// CompatibilityLevel is the Trading API schema version
	CompatibilityLevel int
	// EntriesPerPage is the GetOrders page size
	EntriesPerPage int
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// EbayProductionAPIURL is the production Trading API endpoint
	EbayProductionAPIURL = "https://api.ebay.com/ws/api.dll"
	// EbaySandboxAPIURL is the sandbox Trading API endpoint
	EbaySandboxAPIURL = "https://api.sandbox.ebay.com/ws/api.dll"
	// DefaultCompatibilityLevel is the Trading API version the request
	// and response types are written against
	DefaultCompatibilityLevel = 1193
	// DefaultEntriesPerPage is the largest page GetOrders accepts
	DefaultEntriesPerPage = 100
)

// Errors for eBay configuration
var (
	ErrEbayConfigMissingKeyset = errors.New("ebay: app id, dev id and cert id are required")
	ErrEbayConfigMissingToken  = errors.New("ebay: auth token is required")
)

// NewEbayConfig builds a configuration from a channel's marketplace settings
func NewEbayConfig(settings *channel.MarketplaceSettings) *EbayConfig {
	c := &EbayConfig{
		AppID:              settings.AppID,
		DevID:              settings.DevID,
		CertID:             settings.CertID,
		AuthToken:          settings.AuthToken,
		IsSandbox:          settings.Sandbox,
		SiteID:             settings.SiteID,
		CompatibilityLevel: DefaultCompatibilityLevel,
		EntriesPerPage:     DefaultEntriesPerPage,
		TimeoutSeconds:     30,
	}
	c.APIBaseURL = c.defaultURL()
	return c
}

func (c *EbayConfig) defaultURL() string {
	if c.IsSandbox {
		return EbaySandboxAPIURL
	}
	return EbayProductionAPIURL
}

// Validate validates the eBay configuration and fills in defaults
func (c *EbayConfig) Validate() error {
	if c.AppID == "" || c.DevID == "" || c.CertID == "" {
		return ErrEbayConfigMissingKeyset
	}
	if c.AuthToken == "" {
		return ErrEbayConfigMissingToken
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = c.defaultURL()
	}
	if c.CompatibilityLevel <= 0 {
		c.CompatibilityLevel = DefaultCompatibilityLevel
	}
	if c.EntriesPerPage <= 0 || c.EntriesPerPage > DefaultEntriesPerPage {
		c.EntriesPerPage = DefaultEntriesPerPage
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
