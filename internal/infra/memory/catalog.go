// Package memory provides in-process catalog and purchase stores for local
// runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/titorm/shop-wise-sub000/internal/catalog"
	"github.com/titorm/shop-wise-sub000/internal/domain"
)

// CatalogStore is a concurrency-safe catalog.Store.
type CatalogStore struct {
	mu      sync.RWMutex
	entries map[string]domain.ProductCatalogEntry
	now     func() time.Time
}

// NewCatalogStore creates an empty CatalogStore.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		entries: make(map[string]domain.ProductCatalogEntry),
		now:     time.Now,
	}
}

func (s *CatalogStore) FindByBarcode(ctx context.Context, key string) (*domain.ProductCatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *CatalogStore) Create(ctx context.Context, entry *domain.ProductCatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; ok {
		return catalog.ErrAlreadyExists
	}
	entry.CreatedAt = s.now().UTC()
	s.entries[entry.ID] = *entry
	return nil
}

// Len returns the number of entries.
func (s *CatalogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
