package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/titorm/shop-wise-sub000/internal/catalog"
	"github.com/titorm/shop-wise-sub000/internal/domain"
)

type productDoc struct {
	Name          string    `firestore:"name"`
	Barcode       string    `firestore:"barcode"`
	Brand         *string   `firestore:"brand"`
	Category      string    `firestore:"category"`
	Subcategory   *string   `firestore:"subcategory"`
	UnitOfMeasure *string   `firestore:"unitOfMeasure"`
	CreatedAt     time.Time `firestore:"createdAt,serverTimestamp"`
}

// CatalogStore is a catalog.Store keyed by normalized barcode.
type CatalogStore struct {
	client *firestore.Client
}

// NewCatalogStore creates a CatalogStore.
func NewCatalogStore(client *firestore.Client) *CatalogStore {
	return &CatalogStore{client: client}
}

func (s *CatalogStore) FindByBarcode(ctx context.Context, key string) (*domain.ProductCatalogEntry, error) {
	snap, err := s.client.Collection(productsCollection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindByBarcode: get %s: %w", key, err)
	}

	var doc productDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("FindByBarcode: decode %s: %w", key, err)
	}

	return &domain.ProductCatalogEntry{
		ID:            snap.Ref.ID,
		Name:          doc.Name,
		Barcode:       doc.Barcode,
		Brand:         doc.Brand,
		Category:      doc.Category,
		Subcategory:   doc.Subcategory,
		UnitOfMeasure: doc.UnitOfMeasure,
		CreatedAt:     doc.CreatedAt,
	}, nil
}

// Create uses a create-only write, so concurrent first sightings of a
// barcode produce exactly one document.
func (s *CatalogStore) Create(ctx context.Context, entry *domain.ProductCatalogEntry) error {
	doc := productDoc{
		Name:          entry.Name,
		Barcode:       entry.Barcode,
		Brand:         entry.Brand,
		Category:      entry.Category,
		Subcategory:   entry.Subcategory,
		UnitOfMeasure: entry.UnitOfMeasure,
	}

	res, err := s.client.Collection(productsCollection).Doc(entry.ID).Create(ctx, doc)
	if status.Code(err) == codes.AlreadyExists {
		return catalog.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("Create: product %s: %w", entry.ID, err)
	}

	entry.CreatedAt = res.UpdateTime
	return nil
}
