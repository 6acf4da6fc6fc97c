package domain

import "time"

// ProductRef points at a ProductCatalogEntry. ID is the normalized barcode.
type ProductRef struct {
	ID string `json:"id"`
}

// ProductCatalogEntry is the global, shared product record keyed by normalized barcode.
// It is created on the first sighting of a barcode and never updated afterwards.
type ProductCatalogEntry struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Barcode       string    `json:"barcode"`
	Brand         *string   `json:"brand,omitempty"`
	Category      string    `json:"category"`
	Subcategory   *string   `json:"subcategory,omitempty"`
	UnitOfMeasure *string   `json:"unitOfMeasure,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Ref returns a reference to the entry.
func (e *ProductCatalogEntry) Ref() *ProductRef {
	return &ProductRef{ID: e.ID}
}
