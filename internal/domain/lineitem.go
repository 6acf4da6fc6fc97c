package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawLineItem is one product line as returned by an extractor, before unification.
// It has no identity beyond its position in the extraction batch.
type RawLineItem struct {
	Barcode       string          `json:"barcode"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitOfMeasure *string         `json:"unitOfMeasure,omitempty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Brand         *string         `json:"brand,omitempty"`
	Category      string          `json:"category"`
	Subcategory   *string         `json:"subcategory,omitempty"`
}

// UnifiedLineItem is one line per distinct barcode (unbarcoded lines are never merged).
// Quantity and TotalPrice are sums over the merged raw lines; descriptive fields
// come from the first occurrence.
type UnifiedLineItem RawLineItem

// CatalogKey returns the normalized barcode used to look the item up in the catalog.
func (u UnifiedLineItem) CatalogKey() string {
	return NormalizeBarcode(u.Barcode)
}

// NormalizeBarcode keeps only ASCII digits, so "789-1164.005412" and
// "7891164005412" map to the same key. A result of "" means the item has
// no usable barcode.
func NormalizeBarcode(barcode string) string {
	var b strings.Builder
	b.Grow(len(barcode))
	for _, r := range barcode {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StringPtr returns nil for blank strings and a trimmed copy otherwise.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
