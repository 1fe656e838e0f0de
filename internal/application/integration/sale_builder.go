package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/marketsync/internal/domain/catalog"
	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/domain/party"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleBuilder assembles a sale from one marketplace order. All of its
// repositories must share one transaction so that a failed order leaves
// nothing behind.
type SaleBuilder struct {
	parties  *PartyReconciler
	products *ProductReconciler
	sales    trade.SaleRepository
}

// NewSaleBuilder creates a SaleBuilder
func NewSaleBuilder(parties *PartyReconciler, products *ProductReconciler, sales trade.SaleRepository) *SaleBuilder {
	return &SaleBuilder{
		parties:  parties,
		products: products,
		sales:    sales,
	}
}

// BuildSale creates the sale for an order. If the order was already
// imported on the channel the existing sale is returned with created set
// to false.
func (b *SaleBuilder) BuildSale(ctx context.Context, order integration.Order, ch *channel.Channel) (sale *trade.Sale, created bool, err error) {
	orderID := strings.TrimSpace(order.OrderID)
	if orderID == "" {
		return nil, false, fmt.Errorf("%w: missing order id", integration.ErrInvalidOrderPayload)
	}
	if len(order.Lines) == 0 {
		return nil, false, fmt.Errorf("%w: order %s has no line items", integration.ErrInvalidOrderPayload, orderID)
	}

	existing, err := b.sales.FindByExternalOrder(ctx, ch.ID, orderID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, fmt.Errorf("find sale for order %s: %w", orderID, err)
	}

	buyer, err := b.parties.FindOrCreateParty(ctx, order.Buyer)
	if err != nil {
		return nil, false, err
	}

	var shipTo *party.Address
	if hasAddress(order.Address) {
		if shipTo, err = b.parties.FindOrCreateAddress(ctx, buyer, order.Address); err != nil {
			return nil, false, err
		}
	}
	if party.NormalizePhone(order.Address.Phone) != "" {
		if _, err := b.parties.AddPhone(ctx, buyer, order.Address.Phone); err != nil {
			return nil, false, err
		}
	}

	lines := make([]trade.SaleLine, 0, len(order.Lines))
	for _, item := range order.Lines {
		line, err := b.buildLine(ctx, item)
		if err != nil {
			return nil, false, err
		}
		lines = append(lines, *line)
	}

	sale, err = trade.NewSale(ch.ID, buyer.ID, orderID, order.CreatedTime, currencyOf(order, ch), lines)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", integration.ErrInvalidOrderPayload, err)
	}
	if shipTo != nil {
		sale.ShipTo(shipTo.ID)
	}
	if err := b.sales.Create(ctx, sale); err != nil {
		return nil, false, fmt.Errorf("create sale for order %s: %w", orderID, err)
	}
	return sale, true, nil
}

func (b *SaleBuilder) buildLine(ctx context.Context, item integration.LineItem) (*trade.SaleLine, error) {
	product, err := b.products.FindOrCreateProduct(ctx, item.ItemID)
	if err != nil {
		return nil, err
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(item.Quantity))
	if err != nil {
		return nil, fmt.Errorf("%w: item %s quantity %q", integration.ErrInvalidOrderPayload, item.ItemID, item.Quantity)
	}
	unitPrice, err := catalog.ParsePrice(item.TransactionPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: item %s transaction price %q", integration.ErrInvalidOrderPayload, item.ItemID, item.TransactionPrice)
	}

	description := strings.TrimSpace(item.Title)
	if description == "" {
		description = product.Name()
	}
	line, err := trade.NewSaleLine(product.ID, description, quantity, unitPrice, item.LineItemID)
	if err != nil {
		return nil, fmt.Errorf("%w: item %s: %w", integration.ErrInvalidOrderPayload, item.ItemID, err)
	}
	return line, nil
}

func hasAddress(a integration.PostalAddress) bool {
	return strings.TrimSpace(a.Country) != "" ||
		strings.TrimSpace(a.Street1) != "" ||
		strings.TrimSpace(a.City) != ""
}

func currencyOf(order integration.Order, ch *channel.Channel) string {
	if c := strings.TrimSpace(order.Currency); c != "" {
		return c
	}
	return ch.Currency
}
