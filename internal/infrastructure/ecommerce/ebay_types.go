package ecommerce

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/erp/marketsync/internal/domain/integration"
)

// ebayNamespace is the Trading API XML namespace
const ebayNamespace = "urn:ebay:apis:eBLBaseComponents"

// ebayTimeLayout is the timestamp format of Trading API requests
const ebayTimeLayout = "2006-01-02T15:04:05.000Z"

// ---------------------------------------------------------------------------
// Common Trading API Types
// ---------------------------------------------------------------------------

// EbayRequesterCredentials authenticates a Trading API call
type EbayRequesterCredentials struct {
	EBayAuthToken string `xml:"eBayAuthToken"`
}

// EbayResponse is the envelope shared by all Trading API responses
type EbayResponse struct {
	Ack       string               `xml:"Ack" json:"Ack"`
	Timestamp string               `xml:"Timestamp" json:"Timestamp,omitempty"`
	Errors    OneOrMany[EbayError] `xml:"Errors" json:"Errors,omitempty"`
}

// EbayError is one entry of a response's error list
type EbayError struct {
	ShortMessage string `xml:"ShortMessage" json:"ShortMessage"`
	LongMessage  string `xml:"LongMessage" json:"LongMessage"`
	ErrorCode    string `xml:"ErrorCode" json:"ErrorCode"`
	SeverityCode string `xml:"SeverityCode" json:"SeverityCode"`
}

// IsSuccess returns true unless the call failed. Warnings count as success.
func (r *EbayResponse) IsSuccess() bool {
	return r.Ack != "Failure" && r.Ack != "PartialFailure"
}

// firstError returns the first error of severity Error, if any
func (r *EbayResponse) firstError() *EbayError {
	for i := range r.Errors {
		if r.Errors[i].SeverityCode != "Warning" {
			return &r.Errors[i]
		}
	}
	if len(r.Errors) > 0 {
		return &r.Errors[0]
	}
	return nil
}

func (r *EbayResponse) envelope() *EbayResponse {
	return r
}

// ebayEnvelope is implemented by every response type
type ebayEnvelope interface {
	envelope() *EbayResponse
}

// EbayAmount is a money amount with its currency attribute
type EbayAmount struct {
	Value      string `xml:",chardata" json:"value"`
	CurrencyID string `xml:"currencyID,attr" json:"currencyID,omitempty"`
}

// ---------------------------------------------------------------------------
// GetOrders
// ---------------------------------------------------------------------------

// EbayPagination requests one page of a paginated call
type EbayPagination struct {
	EntriesPerPage int `xml:"EntriesPerPage"`
	PageNumber     int `xml:"PageNumber"`
}

// GetOrdersRequest is the request body of the GetOrders call
type GetOrdersRequest struct {
	XMLName              xml.Name                 `xml:"urn:ebay:apis:eBLBaseComponents GetOrdersRequest"`
	RequesterCredentials EbayRequesterCredentials `xml:"RequesterCredentials"`
	CreateTimeFrom       string                   `xml:"CreateTimeFrom"`
	CreateTimeTo         string                   `xml:"CreateTimeTo"`
	OrderRole            string                   `xml:"OrderRole"`
	Pagination           EbayPagination           `xml:"Pagination"`
}

// GetOrdersResponse is the response of the GetOrders call
type GetOrdersResponse struct {
	EbayResponse
	HasMoreOrders    bool                 `xml:"HasMoreOrders" json:"HasMoreOrders"`
	PageNumber       int                  `xml:"PageNumber" json:"PageNumber,omitempty"`
	PaginationResult EbayPaginationResult `xml:"PaginationResult" json:"PaginationResult"`
	OrderArray       *EbayOrderArray      `xml:"OrderArray" json:"OrderArray,omitempty"`
}

// EbayPaginationResult reports the size of a paginated result
type EbayPaginationResult struct {
	TotalNumberOfPages   int `xml:"TotalNumberOfPages" json:"TotalNumberOfPages"`
	TotalNumberOfEntries int `xml:"TotalNumberOfEntries" json:"TotalNumberOfEntries"`
}

// EbayOrderArray wraps the orders of a page. A page with one order
// carries a single object in the JSON form.
type EbayOrderArray struct {
	Order OneOrMany[EbayOrder] `xml:"Order" json:"Order"`
}

// EbayOrder is one order as returned by GetOrders
type EbayOrder struct {
	OrderID          string               `xml:"OrderID" json:"OrderID"`
	OrderStatus      string               `xml:"OrderStatus" json:"OrderStatus"`
	CreatedTime      string               `xml:"CreatedTime" json:"CreatedTime"`
	BuyerUserID      string               `xml:"BuyerUserID" json:"BuyerUserID"`
	Total            EbayAmount           `xml:"Total" json:"Total"`
	ShippingAddress  EbayAddress          `xml:"ShippingAddress" json:"ShippingAddress"`
	TransactionArray EbayTransactionArray `xml:"TransactionArray" json:"TransactionArray"`
}

// EbayAddress is a buyer's shipping address
type EbayAddress struct {
	Name            string `xml:"Name" json:"Name"`
	Street1         string `xml:"Street1" json:"Street1"`
	Street2         string `xml:"Street2" json:"Street2"`
	CityName        string `xml:"CityName" json:"CityName"`
	StateOrProvince string `xml:"StateOrProvince" json:"StateOrProvince"`
	Country         string `xml:"Country" json:"Country"`
	PostalCode      string `xml:"PostalCode" json:"PostalCode"`
	Phone           string `xml:"Phone" json:"Phone"`
}

// EbayTransactionArray wraps the line items of an order
type EbayTransactionArray struct {
	Transaction OneOrMany[EbayTransaction] `xml:"Transaction" json:"Transaction"`
}

// EbayTransaction is one line item of an order
type EbayTransaction struct {
	Buyer             EbayBuyer   `xml:"Buyer" json:"Buyer"`
	Item              EbayItemRef `xml:"Item" json:"Item"`
	QuantityPurchased string      `xml:"QuantityPurchased" json:"QuantityPurchased"`
	TransactionID     string      `xml:"TransactionID" json:"TransactionID"`
	TransactionPrice  EbayAmount  `xml:"TransactionPrice" json:"TransactionPrice"`
	OrderLineItemID   string      `xml:"OrderLineItemID" json:"OrderLineItemID"`
}

// EbayBuyer is the buyer detail attached to a transaction
type EbayBuyer struct {
	Email         string `xml:"Email" json:"Email"`
	UserFirstName string `xml:"UserFirstName" json:"UserFirstName"`
	UserLastName  string `xml:"UserLastName" json:"UserLastName"`
}

// EbayItemRef identifies the item bought in a transaction
type EbayItemRef struct {
	ItemID string `xml:"ItemID" json:"ItemID"`
	Title  string `xml:"Title" json:"Title"`
	SKU    string `xml:"SKU" json:"SKU"`
}

// ---------------------------------------------------------------------------
// GetItem
// ---------------------------------------------------------------------------

// GetItemRequest is the request body of the GetItem call
type GetItemRequest struct {
	XMLName              xml.Name                 `xml:"urn:ebay:apis:eBLBaseComponents GetItemRequest"`
	RequesterCredentials EbayRequesterCredentials `xml:"RequesterCredentials"`
	ItemID               string                   `xml:"ItemID"`
	DetailLevel          string                   `xml:"DetailLevel"`
}

// GetItemResponse is the response of the GetItem call
type GetItemResponse struct {
	EbayResponse
	Item *EbayItem `xml:"Item" json:"Item,omitempty"`
}

// EbayItem is a listing's full detail
type EbayItem struct {
	ItemID        string     `xml:"ItemID" json:"ItemID"`
	Title         string     `xml:"Title" json:"Title"`
	Description   string     `xml:"Description" json:"Description"`
	SKU           string     `xml:"SKU" json:"SKU"`
	Currency      string     `xml:"Currency" json:"Currency"`
	StartPrice    EbayAmount `xml:"StartPrice" json:"StartPrice"`
	BuyItNowPrice EbayAmount `xml:"BuyItNowPrice" json:"BuyItNowPrice"`
}

// ---------------------------------------------------------------------------
// GetTokenStatus
// ---------------------------------------------------------------------------

// GetTokenStatusRequest is the request body of the GetTokenStatus call
type GetTokenStatusRequest struct {
	XMLName              xml.Name                 `xml:"urn:ebay:apis:eBLBaseComponents GetTokenStatusRequest"`
	RequesterCredentials EbayRequesterCredentials `xml:"RequesterCredentials"`
}

// GetTokenStatusResponse is the response of the GetTokenStatus call
type GetTokenStatusResponse struct {
	EbayResponse
	TokenStatus *EbayTokenStatus `xml:"TokenStatus" json:"TokenStatus,omitempty"`
}

// EbayTokenStatus describes the auth token
type EbayTokenStatus struct {
	Status         string `xml:"Status" json:"Status"`
	EIASToken      string `xml:"EIASToken" json:"EIASToken,omitempty"`
	ExpirationTime string `xml:"ExpirationTime" json:"ExpirationTime"`
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// parseEbayTime parses a Trading API timestamp. Unparseable values yield
// the zero time.
func parseEbayTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// toOrder converts an eBay order into the marketplace-neutral form. The
// buyer's email sits on the transactions; the first non-empty one wins.
func (o *EbayOrder) toOrder() integration.Order {
	order := integration.Order{
		OrderID:     strings.TrimSpace(o.OrderID),
		Status:      o.OrderStatus,
		CreatedTime: parseEbayTime(o.CreatedTime),
		Currency:    o.Total.CurrencyID,
		Total:       o.Total.Value,
		Buyer:       integration.Buyer{UserID: strings.TrimSpace(o.BuyerUserID)},
		Address: integration.PostalAddress{
			Name:            o.ShippingAddress.Name,
			Street1:         o.ShippingAddress.Street1,
			Street2:         o.ShippingAddress.Street2,
			City:            o.ShippingAddress.CityName,
			StateOrProvince: o.ShippingAddress.StateOrProvince,
			Country:         o.ShippingAddress.Country,
			PostalCode:      o.ShippingAddress.PostalCode,
			Phone:           o.ShippingAddress.Phone,
		},
		Lines: make([]integration.LineItem, 0, len(o.TransactionArray.Transaction)),
	}

	for _, tx := range o.TransactionArray.Transaction {
		if order.Buyer.Email == "" && tx.Buyer.Email != "" {
			order.Buyer.Email = tx.Buyer.Email
			order.Buyer.FirstName = tx.Buyer.UserFirstName
			order.Buyer.LastName = tx.Buyer.UserLastName
		}
		lineID := tx.OrderLineItemID
		if lineID == "" {
			lineID = tx.TransactionID
		}
		order.Lines = append(order.Lines, integration.LineItem{
			LineItemID:       lineID,
			ItemID:           strings.TrimSpace(tx.Item.ItemID),
			Title:            tx.Item.Title,
			SKU:              tx.Item.SKU,
			Quantity:         tx.QuantityPurchased,
			TransactionPrice: tx.TransactionPrice.Value,
		})
		if order.Currency == "" {
			order.Currency = tx.TransactionPrice.CurrencyID
		}
	}
	return order
}

// toItem converts an eBay listing into the marketplace-neutral form
func (i *EbayItem) toItem() *integration.Item {
	currency := i.Currency
	if currency == "" {
		currency = i.StartPrice.CurrencyID
	}
	return &integration.Item{
		ItemID:        strings.TrimSpace(i.ItemID),
		Title:         i.Title,
		Description:   i.Description,
		SKU:           i.SKU,
		StartPrice:    i.StartPrice.Value,
		BuyItNowPrice: i.BuyItNowPrice.Value,
		Currency:      currency,
	}
}

// toTokenStatus converts the token status, mapping unknown states to
// TokenStateUnknown
func (s *EbayTokenStatus) toTokenStatus() *integration.TokenStatus {
	state := integration.TokenState(s.Status)
	switch state {
	case integration.TokenStateActive, integration.TokenStateExpired, integration.TokenStateRevoked:
	default:
		state = integration.TokenStateUnknown
	}
	return &integration.TokenStatus{
		Status:         state,
		ExpirationTime: parseEbayTime(s.ExpirationTime),
	}
}

// ordersOf flattens a GetOrders page
func ordersOf(resp *GetOrdersResponse) []integration.Order {
	if resp.OrderArray == nil {
		return nil
	}
	orders := make([]integration.Order, 0, len(resp.OrderArray.Order))
	for i := range resp.OrderArray.Order {
		orders = append(orders, resp.OrderArray.Order[i].toOrder())
	}
	return orders
}
