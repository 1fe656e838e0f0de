package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/marketsync/internal/domain/catalog"
	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/shared"
)

// ProductReconciler maps marketplace items onto catalog products. Products
// are found or created, never updated.
type ProductReconciler struct {
	products    catalog.Repository
	marketplace integration.Marketplace
	source      string
	defaultUOM  string
}

// NewProductReconciler creates a reconciler that builds new products with
// the channel's default unit of measure
func NewProductReconciler(products catalog.Repository, marketplace integration.Marketplace, ch *channel.Channel) *ProductReconciler {
	return &ProductReconciler{
		products:    products,
		marketplace: marketplace,
		source:      ch.Source.String(),
		defaultUOM:  ch.DefaultUOM,
	}
}

// FindOrCreateProduct returns the product linked to the item, fetching the
// item detail and creating the product when there is none
func (r *ProductReconciler) FindOrCreateProduct(ctx context.Context, itemID string) (*catalog.Product, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, catalog.ErrInvalidItemID
	}

	p, err := r.products.FindByItemID(ctx, itemID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find product for item %s: %w", itemID, err)
	}

	item, err := r.marketplace.FetchItemDetail(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("fetch item %s: %w", itemID, err)
	}

	p, err = catalog.NewProductFromListing(catalog.Listing{
		Source:        r.source,
		ItemID:        itemID,
		Title:         item.Title,
		Description:   item.Description,
		SKU:           item.SKU,
		StartPrice:    item.StartPrice,
		BuyItNowPrice: item.BuyItNowPrice,
	}, r.defaultUOM)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", itemID, err)
	}

	if err := r.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product for item %s: %w", itemID, err)
	}
	return p, nil
}
