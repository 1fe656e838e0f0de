// Package catalog holds sellable products. A product is split into a
// template carrying the shared descriptive data and prices, and a variant
// carrying the sellable unit (code, description).
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Catalog Errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidProductName = errors.New("catalog: product name is required")
	ErrInvalidItemID      = errors.New("catalog: marketplace item id is required")
	ErrInvalidPrice       = errors.New("catalog: price is missing or not a valid amount")
	ErrInvalidUOM         = errors.New("catalog: unit of measure is required")
	ErrDuplicateItemID    = errors.New("catalog: a product already exists for this marketplace item")
)

// ProductType classifies templates
type ProductType string

const (
	ProductTypeGoods   ProductType = "goods"
	ProductTypeService ProductType = "service"
)

// ProductTemplate is the shared descriptive record of a product
type ProductTemplate struct {
	shared.BaseEntity
	Name        string
	Description string
	Type        ProductType
	ListPrice   decimal.Decimal
	CostPrice   decimal.Decimal
	DefaultUOM  string
	Salable     bool
}

// Product is the sellable variant of a template
type Product struct {
	shared.BaseEntity
	TemplateID  uuid.UUID
	Template    *ProductTemplate
	Code        string
	Description string
	// Item is set for products imported from a marketplace
	Item *MarketplaceItem
}

// MarketplaceItem links a product to its marketplace listing.
// ItemID is globally unique.
type MarketplaceItem struct {
	ProductID uuid.UUID
	Source    string
	ItemID    string
}

// Listing is the marketplace data a product is built from. Prices are the
// raw decimal strings from the marketplace.
type Listing struct {
	Source        string
	ItemID        string
	Title         string
	Description   string
	SKU           string
	StartPrice    string
	BuyItNowPrice string
}

// NewProductFromListing builds a salable template and its variant.
//
// The list price is the buy-it-now price when set to a positive amount,
// otherwise the start price. The cost price is the start price.
func NewProductFromListing(l Listing, uom string) (*Product, error) {
	itemID := strings.TrimSpace(l.ItemID)
	if itemID == "" {
		return nil, ErrInvalidItemID
	}
	name := strings.TrimSpace(l.Title)
	if name == "" {
		return nil, ErrInvalidProductName
	}
	if strings.TrimSpace(uom) == "" {
		return nil, ErrInvalidUOM
	}

	startPrice, err := ParsePrice(l.StartPrice)
	if err != nil {
		return nil, err
	}
	listPrice := startPrice
	if strings.TrimSpace(l.BuyItNowPrice) != "" {
		buyNow, err := ParsePrice(l.BuyItNowPrice)
		if err != nil {
			return nil, err
		}
		if buyNow.IsPositive() {
			listPrice = buyNow
		}
	}

	tmpl := &ProductTemplate{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: l.Description,
		Type:        ProductTypeGoods,
		ListPrice:   listPrice,
		CostPrice:   startPrice,
		DefaultUOM:  uom,
		Salable:     true,
	}
	p := &Product{
		BaseEntity:  shared.NewBaseEntity(),
		TemplateID:  tmpl.ID,
		Template:    tmpl,
		Code:        strings.TrimSpace(l.SKU),
		Description: l.Description,
	}
	p.Item = &MarketplaceItem{
		ProductID: p.ID,
		Source:    l.Source,
		ItemID:    itemID,
	}
	return p, nil
}

// Name returns the template name
func (p *Product) Name() string {
	if p.Template == nil {
		return ""
	}
	return p.Template.Name
}

// ParsePrice parses a non-negative decimal amount
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidPrice
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return d, nil
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// Repository persists products together with their template and item link
type Repository interface {
	// FindByItemID returns shared.ErrNotFound when no product is linked to
	// the item
	FindByItemID(ctx context.Context, itemID string) (*Product, error)
	// Create stores template, variant and item link as one unit.
	// Returns ErrDuplicateItemID if the item is already linked.
	Create(ctx context.Context, p *Product) error
}
