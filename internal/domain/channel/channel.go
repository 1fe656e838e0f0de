// Package channel holds the sale channel aggregate and its marketplace
// extension: API credentials plus the incremental import cursor.
package channel

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Channel Errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidChannelName        = errors.New("channel: name is required")
	ErrInvalidChannelSource      = errors.New("channel: channel source is not ebay")
	ErrMarketplaceNotConfigured  = errors.New("channel: marketplace settings not configured")
	ErrInvalidCredentials        = errors.New("channel: app, dev, cert id and auth token are required")
	ErrDuplicateCredentials      = errors.New("channel: credentials already used by another channel")
	ErrCursorRegression          = errors.New("channel: last import time cannot move backwards")
	ErrChannelNotFound           = errors.New("channel: channel not found")
	ErrInvalidDefaultUnitMeasure = errors.New("channel: default unit of measure is required")
)

// DefaultLookback is how far back the first import of a new channel reaches
const DefaultLookback = 30 * 24 * time.Hour

// DefaultLastImportTime returns the cursor a freshly configured channel starts from
func DefaultLastImportTime(now time.Time) time.Time {
	return now.UTC().Add(-DefaultLookback)
}

// Source identifies where a channel's orders originate
type Source string

const (
	SourceManual Source = "manual"
	SourceEbay   Source = "ebay"
)

// IsValid returns true if the source is known
func (s Source) IsValid() bool {
	switch s {
	case SourceManual, SourceEbay:
		return true
	}
	return false
}

// String returns the string representation
func (s Source) String() string {
	return string(s)
}

// Channel is a configured sales channel. Marketplace is nil for channels
// that are not fed by a marketplace account.
type Channel struct {
	shared.BaseEntity
	Name        string
	Source      Source
	DefaultUOM  string
	Currency    string
	Marketplace *MarketplaceSettings
}

// NewChannel creates a channel with the given source
func NewChannel(name string, source Source, defaultUOM, currency string) (*Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidChannelName
	}
	if !source.IsValid() {
		return nil, shared.ErrInvalidInput.Withf("unknown channel source %q", source)
	}
	if strings.TrimSpace(defaultUOM) == "" {
		return nil, ErrInvalidDefaultUnitMeasure
	}
	if currency == "" {
		currency = "USD"
	}
	return &Channel{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Source:     source,
		DefaultUOM: strings.TrimSpace(defaultUOM),
		Currency:   strings.ToUpper(currency),
	}, nil
}

// AttachMarketplace sets the marketplace extension for the channel
func (c *Channel) AttachMarketplace(settings *MarketplaceSettings) {
	settings.ChannelID = c.ID
	c.Marketplace = settings
	c.Touch()
}

// ValidateMarketplace checks the channel can be used for marketplace imports
func (c *Channel) ValidateMarketplace() error {
	if c.Source != SourceEbay {
		return ErrInvalidChannelSource
	}
	if c.Marketplace == nil {
		return ErrMarketplaceNotConfigured
	}
	return nil
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// Repository persists channels together with their marketplace settings
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Channel, error)
	FindBySource(ctx context.Context, source Source) ([]Channel, error)
	Create(ctx context.Context, ch *Channel) error
	// AdvanceCursor stores t as the channel's last import time unless the
	// stored value is already later. It commits independently of any
	// surrounding order work.
	AdvanceCursor(ctx context.Context, channelID uuid.UUID, t time.Time) error
}
