// Package unify collapses the raw product lines of one extraction batch into
// one line per distinct barcode.
package unify

import "github.com/titorm/shop-wise-sub000/internal/domain"

// LineItems merges raw lines sharing a normalized barcode. Quantity and
// TotalPrice are summed; every other field comes from the first occurrence.
// Lines without a usable barcode are kept as-is and never merged. Output order
// is the order in which each barcode (or unbarcoded line) was first seen.
//
// Values are not validated: zero or negative amounts pass through. The output
// shares no memory with raw.
func LineItems(raw []domain.RawLineItem) []domain.UnifiedLineItem {
	out := make([]domain.UnifiedLineItem, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, item := range raw {
		key := domain.NormalizeBarcode(item.Barcode)
		if key == "" {
			out = append(out, domain.UnifiedLineItem(clone(item)))
			continue
		}

		if i, ok := index[key]; ok {
			out[i].Quantity = out[i].Quantity.Add(item.Quantity)
			out[i].TotalPrice = out[i].TotalPrice.Add(item.TotalPrice)
			continue
		}

		index[key] = len(out)
		out = append(out, domain.UnifiedLineItem(clone(item)))
	}

	return out
}

// Raw converts unified lines back to raw lines, e.g. to feed them through
// LineItems again after a manual edit.
func Raw(items []domain.UnifiedLineItem) []domain.RawLineItem {
	out := make([]domain.RawLineItem, len(items))
	for i, item := range items {
		out[i] = clone(domain.RawLineItem(item))
	}
	return out
}

// clone copies the optional string fields so the result owns them.
func clone(item domain.RawLineItem) domain.RawLineItem {
	item.UnitOfMeasure = copyString(item.UnitOfMeasure)
	item.Brand = copyString(item.Brand)
	item.Subcategory = copyString(item.Subcategory)
	return item
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
