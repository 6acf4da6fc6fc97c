package catalog

import (
	"context"
	"errors"

	"github.com/titorm/shop-wise-sub000/internal/domain"
	"github.com/titorm/shop-wise-sub000/internal/logger"
)

// Resolver links unified lines to catalog entries.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns a reference to the catalog entry for item's barcode.
//
// Items whose barcode normalizes to "" get a nil reference and no error.
// An existing entry is returned as-is even when item disagrees with it.
// Otherwise a new entry is created from item; if another writer created
// the same key first, the winner is re-read and returned.
func (r *Resolver) Resolve(ctx context.Context, item domain.UnifiedLineItem) (*domain.ProductRef, error) {
	key := item.CatalogKey()
	if key == "" {
		return nil, nil
	}

	log := logger.FromContext(ctx).With().Str("barcode", key).Logger()

	existing, err := r.store.FindByBarcode(ctx, key)
	if err != nil {
		return nil, &LookupError{Barcode: key, Err: err}
	}
	if existing != nil {
		return existing.Ref(), nil
	}

	entry := &domain.ProductCatalogEntry{
		ID:            key,
		Name:          item.Name,
		Barcode:       key,
		Brand:         item.Brand,
		Category:      item.Category,
		Subcategory:   item.Subcategory,
		UnitOfMeasure: item.UnitOfMeasure,
	}

	err = r.store.Create(ctx, entry)
	if err == nil {
		log.Info().Str("name", entry.Name).Msg("Created catalog entry")
		return entry.Ref(), nil
	}
	if !errors.Is(err, ErrAlreadyExists) {
		return nil, &WriteError{Barcode: key, Err: err}
	}

	log.Debug().Msg("Catalog entry created concurrently, reusing it")

	winner, err := r.store.FindByBarcode(ctx, key)
	if err != nil {
		return nil, &LookupError{Barcode: key, Err: err}
	}
	if winner == nil {
		return nil, &LookupError{Barcode: key, Err: errors.New("entry vanished after create conflict")}
	}
	return winner.Ref(), nil
}
