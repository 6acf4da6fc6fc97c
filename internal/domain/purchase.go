package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// StoreInfo is the store header extracted from a full receipt.
type StoreInfo struct {
	Name      string   `json:"name"`
	TaxID     string   `json:"taxId,omitempty"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Purchase is one completed checkout. TotalAmount always equals the sum of
// TotalPrice over the purchase's items.
type Purchase struct {
	ID          string          `json:"id"`
	HouseholdID string          `json:"householdId"`
	StoreName   string          `json:"storeName"`
	Date        civil.Date      `json:"date"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Store       *StoreInfo      `json:"store,omitempty"`
}

// PurchaseItem is a persisted line of a purchase. Product is nil when the line
// had no resolvable barcode.
type PurchaseItem struct {
	ID            string          `json:"id"`
	Product       *ProductRef     `json:"product,omitempty"`
	Name          string          `json:"name"`
	UnitOfMeasure *string         `json:"unitOfMeasure,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// SameContent reports whether two items would be stored identically, ignoring ID.
func (p PurchaseItem) SameContent(o PurchaseItem) bool {
	if (p.Product == nil) != (o.Product == nil) {
		return false
	}
	if p.Product != nil && p.Product.ID != o.Product.ID {
		return false
	}
	return p.Name == o.Name &&
		StringValue(p.UnitOfMeasure) == StringValue(o.UnitOfMeasure) &&
		p.Quantity.Equal(o.Quantity) &&
		p.UnitPrice.Equal(o.UnitPrice) &&
		p.TotalPrice.Equal(o.TotalPrice)
}
