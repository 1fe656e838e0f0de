package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/marketsync/internal/domain/catalog"
	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestChannel(t *testing.T) *channel.Channel {
	t.Helper()
	ch, err := channel.NewChannel("eBay US", channel.SourceEbay, "unit", "USD")
	require.NoError(t, err)
	settings, err := channel.NewMarketplaceSettings("app", "dev", "cert", "token", true, ch.CreatedAt)
	require.NoError(t, err)
	ch.AttachMarketplace(settings)
	return ch
}

func TestProductReconciler_FindOrCreateProduct(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		item      *integration.Item
		fetchErr  error
		createErr error
		wantErr   error
		wantList  string
		wantCost  string
	}{
		{
			name:     "buy it now price wins",
			item:     &integration.Item{ItemID: "1001", Title: "Brass Lamp", StartPrice: "10.00", BuyItNowPrice: "15.50"},
			wantList: "15.5",
			wantCost: "10",
		},
		{
			name:     "zero buy it now falls back to start price",
			item:     &integration.Item{ItemID: "1001", Title: "Brass Lamp", StartPrice: "10.00", BuyItNowPrice: "0.0"},
			wantList: "10",
			wantCost: "10",
		},
		{
			name:    "missing start price",
			item:    &integration.Item{ItemID: "1001", Title: "Brass Lamp"},
			wantErr: catalog.ErrInvalidPrice,
		},
		{
			name:     "item not found",
			fetchErr: integration.ErrItemNotFound,
			wantErr:  integration.ErrItemNotFound,
		},
		{
			name:      "duplicate item id",
			item:      &integration.Item{ItemID: "1001", Title: "Brass Lamp", StartPrice: "10.00"},
			createErr: catalog.ErrDuplicateItemID,
			wantErr:   catalog.ErrDuplicateItemID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductRepository)
			marketplace := new(MockMarketplace)
			products.On("FindByItemID", ctx, "1001").Return(nil, shared.ErrNotFound)
			if tt.fetchErr != nil {
				marketplace.On("FetchItemDetail", ctx, "1001").Return(nil, tt.fetchErr)
			} else {
				marketplace.On("FetchItemDetail", ctx, "1001").Return(tt.item, nil)
			}
			products.On("Create", ctx, mock.Anything).Return(tt.createErr).Maybe()

			r := NewProductReconciler(products, marketplace, newTestChannel(t))
			p, err := r.FindOrCreateProduct(ctx, "1001")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Brass Lamp", p.Name())
			assert.Equal(t, "unit", p.Template.DefaultUOM)
			assert.True(t, p.Template.Salable)
			assert.True(t, decimal.RequireFromString(tt.wantList).Equal(p.Template.ListPrice))
			assert.True(t, decimal.RequireFromString(tt.wantCost).Equal(p.Template.CostPrice))
			assert.Equal(t, "1001", p.Item.ItemID)
			assert.Equal(t, "ebay", p.Item.Source)
		})
	}
}

func TestProductReconciler_ExistingProductIsNotRefetched(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	marketplace := new(MockMarketplace)

	existing, err := catalog.NewProductFromListing(catalog.Listing{
		Source: "ebay", ItemID: "1001", Title: "Brass Lamp", StartPrice: "10",
	}, "unit")
	require.NoError(t, err)
	products.On("FindByItemID", ctx, "1001").Return(existing, nil)

	r := NewProductReconciler(products, marketplace, newTestChannel(t))
	got, err := r.FindOrCreateProduct(ctx, "1001")

	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	marketplace.AssertNotCalled(t, "FetchItemDetail", mock.Anything, mock.Anything)
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductReconciler_LookupFailure(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	marketplace := new(MockMarketplace)
	dbErr := errors.New("db down")
	products.On("FindByItemID", ctx, "1001").Return(nil, dbErr)

	r := NewProductReconciler(products, marketplace, newTestChannel(t))
	_, err := r.FindOrCreateProduct(ctx, "1001")

	assert.ErrorIs(t, err, dbErr)
	marketplace.AssertNotCalled(t, "FetchItemDetail", mock.Anything, mock.Anything)
}

func TestProductReconciler_EmptyItemID(t *testing.T) {
	r := NewProductReconciler(new(MockProductRepository), new(MockMarketplace), newTestChannel(t))
	_, err := r.FindOrCreateProduct(context.Background(), " ")
	assert.ErrorIs(t, err, catalog.ErrInvalidItemID)
}
