// Package catalog resolves purchase lines to entries of the shared product
// catalog, creating entries lazily on first sighting of a barcode.
package catalog

import (
	"context"
	"errors"

	"github.com/titorm/shop-wise-sub000/internal/domain"
)

// ErrAlreadyExists is returned by Store.Create when an entry with the same key exists.
var ErrAlreadyExists = errors.New("catalog entry already exists")

// Store is the persistence boundary of the product catalog. Keys are
// normalized barcodes.
type Store interface {
	// FindByBarcode returns (nil, nil) when no entry has the key.
	FindByBarcode(ctx context.Context, key string) (*domain.ProductCatalogEntry, error)

	// Create writes entry only if its ID is not taken, otherwise returns
	// ErrAlreadyExists. The store sets CreatedAt.
	Create(ctx context.Context, entry *domain.ProductCatalogEntry) error
}
