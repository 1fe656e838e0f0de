package channel

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MarketplaceSettings is the marketplace extension of a channel
type MarketplaceSettings struct {
	ChannelID      uuid.UUID
	AppID          string
	DevID          string
	CertID         string
	AuthToken      string
	Sandbox        bool
	SiteID         int
	LastImportTime time.Time
}

// NewMarketplaceSettings validates credentials and initialises the cursor
func NewMarketplaceSettings(appID, devID, certID, token string, sandbox bool, now time.Time) (*MarketplaceSettings, error) {
	s := &MarketplaceSettings{
		AppID:          strings.TrimSpace(appID),
		DevID:          strings.TrimSpace(devID),
		CertID:         strings.TrimSpace(certID),
		AuthToken:      strings.TrimSpace(token),
		Sandbox:        sandbox,
		LastImportTime: DefaultLastImportTime(now),
	}
	if s.AppID == "" || s.DevID == "" || s.CertID == "" || s.AuthToken == "" {
		return nil, ErrInvalidCredentials
	}
	return s, nil
}

// AdvanceCursor moves the last import time forward to t
func (s *MarketplaceSettings) AdvanceCursor(t time.Time) error {
	t = t.UTC()
	if t.Before(s.LastImportTime) {
		return ErrCursorRegression
	}
	s.LastImportTime = t
	return nil
}
