// Package trade holds sales created from marketplace orders.
package trade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Sale Errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidExternalOrderID = errors.New("trade: external order id is required")
	ErrInvalidParty           = errors.New("trade: sale requires a party")
	ErrNoLines                = errors.New("trade: sale requires at least one line")
	ErrInvalidQuantity        = errors.New("trade: line quantity must be positive")
	ErrInvalidUnitPrice       = errors.New("trade: line unit price cannot be negative")
	ErrInvalidLineProduct     = errors.New("trade: line requires a product")
	ErrDuplicateSale          = errors.New("trade: sale already exists for this marketplace order")
)

// SaleState is the workflow state of a sale
type SaleState string

const (
	SaleStateDraft     SaleState = "draft"
	SaleStateQuotation SaleState = "quotation"
	SaleStateConfirmed SaleState = "confirmed"
)

// IsValid returns true if the state is known
func (s SaleState) IsValid() bool {
	switch s {
	case SaleStateDraft, SaleStateQuotation, SaleStateConfirmed:
		return true
	}
	return false
}

// String returns the string representation
func (s SaleState) String() string {
	return string(s)
}

// Sale is a local order. (ChannelID, ExternalOrderID) is unique.
type Sale struct {
	shared.BaseEntity
	ChannelID         uuid.UUID
	PartyID           uuid.UUID
	ShipmentAddressID *uuid.UUID
	ExternalOrderID   string
	Reference         string
	SaleDate          time.Time
	Currency          string
	State             SaleState
	Lines             []SaleLine
}

// SaleLine is one product line of a sale
type SaleLine struct {
	shared.BaseEntity
	SaleID         uuid.UUID
	ProductID      uuid.UUID
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	ExternalLineID string
	Sequence       int
}

// NewSaleLine validates quantity and price
func NewSaleLine(productID uuid.UUID, description string, quantity, unitPrice decimal.Decimal, externalLineID string) (*SaleLine, error) {
	if productID == uuid.Nil {
		return nil, ErrInvalidLineProduct
	}
	if !quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return nil, ErrInvalidUnitPrice
	}
	return &SaleLine{
		BaseEntity:     shared.NewBaseEntity(),
		ProductID:      productID,
		Description:    description,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		ExternalLineID: externalLineID,
	}, nil
}

// Amount returns quantity times unit price
func (l *SaleLine) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// NewSale creates a confirmed sale for a marketplace order
func NewSale(channelID, partyID uuid.UUID, externalOrderID string, saleDate time.Time, currency string, lines []SaleLine) (*Sale, error) {
	externalOrderID = strings.TrimSpace(externalOrderID)
	if externalOrderID == "" {
		return nil, ErrInvalidExternalOrderID
	}
	if partyID == uuid.Nil {
		return nil, ErrInvalidParty
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	s := &Sale{
		BaseEntity:      shared.NewBaseEntity(),
		ChannelID:       channelID,
		PartyID:         partyID,
		ExternalOrderID: externalOrderID,
		Reference:       externalOrderID,
		SaleDate:        saleDate.UTC(),
		Currency:        strings.ToUpper(currency),
		State:           SaleStateConfirmed,
		Lines:           make([]SaleLine, len(lines)),
	}
	for i, l := range lines {
		l.SaleID = s.ID
		l.Sequence = i + 1
		s.Lines[i] = l
	}
	return s, nil
}

// ShipTo sets the shipment address
func (s *Sale) ShipTo(addressID uuid.UUID) {
	s.ShipmentAddressID = &addressID
}

// TotalAmount sums the line amounts
func (s *Sale) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Lines {
		total = total.Add(s.Lines[i].Amount())
	}
	return total
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// SaleRepository persists sales with their lines
type SaleRepository interface {
	// FindByExternalOrder returns shared.ErrNotFound when the order has not
	// been imported on the channel
	FindByExternalOrder(ctx context.Context, channelID uuid.UUID, externalOrderID string) (*Sale, error)
	// Create returns ErrDuplicateSale if the order was already imported
	Create(ctx context.Context, s *Sale) error
}
