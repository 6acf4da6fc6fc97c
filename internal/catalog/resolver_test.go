package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/titorm/shop-wise-sub000/internal/domain"
)

func line(barcode, name string) domain.UnifiedLineItem {
	return domain.UnifiedLineItem{
		Barcode:    barcode,
		Name:       name,
		Quantity:   decimal.NewFromInt(1),
		UnitPrice:  decimal.RequireFromString("8.99"),
		TotalPrice: decimal.RequireFromString("8.99"),
		Category:   "Mercearia",
	}
}

func TestResolve_EmptyBarcode(t *testing.T) {
	store := &mockStore{}
	r := NewResolver(store)

	for _, barcode := range []string{"", "--", " - . "} {
		ref, err := r.Resolve(context.Background(), line(barcode, "Bananas"))
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", barcode, err)
		}
		if ref != nil {
			t.Errorf("Resolve(%q) = %v, want nil", barcode, ref)
		}
	}
	if store.findCalls != 0 || store.createCalls != 0 {
		t.Errorf("Expected no store calls, got find=%d create=%d", store.findCalls, store.createCalls)
	}
}

func TestResolve_ExistingEntryIsNotOverwritten(t *testing.T) {
	store := &mockStore{
		FindByBarcodeFunc: func(ctx context.Context, key string) (*domain.ProductCatalogEntry, error) {
			if key != "7891164005412" {
				t.Errorf("Expected normalized key, got %q", key)
			}
			return &domain.ProductCatalogEntry{ID: key, Name: "Original"}, nil
		},
		CreateFunc: func(ctx context.Context, entry *domain.ProductCatalogEntry) error {
			t.Error("Create should not be called for an existing entry")
			return nil
		},
	}

	ref, err := NewResolver(store).Resolve(context.Background(), line("789-1164.005412", "Different name"))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.ID != "7891164005412" {
		t.Errorf("Expected ref to 7891164005412, got %v", ref)
	}
}

func TestResolve_CreatesMissingEntry(t *testing.T) {
	var created *domain.ProductCatalogEntry
	brand := "Pilão"
	store := &mockStore{
		CreateFunc: func(ctx context.Context, entry *domain.ProductCatalogEntry) error {
			created = entry
			return nil
		},
	}

	item := line("7891164005412", "Coffee 500g")
	item.Brand = &brand

	ref, err := NewResolver(store).Resolve(context.Background(), item)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.ID != "7891164005412" {
		t.Fatalf("Expected ref to 7891164005412, got %v", ref)
	}
	if created == nil {
		t.Fatal("Expected Create to be called")
	}
	if created.Name != "Coffee 500g" || created.Barcode != "7891164005412" || domain.StringValue(created.Brand) != "Pilão" {
		t.Errorf("Unexpected created entry: %+v", created)
	}
}

func TestResolve_LostRaceReturnsWinner(t *testing.T) {
	finds := 0
	store := &mockStore{
		FindByBarcodeFunc: func(ctx context.Context, key string) (*domain.ProductCatalogEntry, error) {
			finds++
			if finds == 1 {
				return nil, nil
			}
			return &domain.ProductCatalogEntry{ID: key, Name: "Winner"}, nil
		},
		CreateFunc: func(ctx context.Context, entry *domain.ProductCatalogEntry) error {
			return ErrAlreadyExists
		},
	}

	ref, err := NewResolver(store).Resolve(context.Background(), line("1234", "Loser"))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.ID != "1234" {
		t.Errorf("Expected ref to winner, got %v", ref)
	}
	if finds != 2 {
		t.Errorf("Expected 2 lookups, got %d", finds)
	}
}

func TestResolve_Errors(t *testing.T) {
	boom := errors.New("unavailable")

	tests := []struct {
		name      string
		store     *mockStore
		wantWrite bool
	}{
		{
			name: "lookup fails",
			store: &mockStore{
				FindByBarcodeFunc: func(ctx context.Context, key string) (*domain.ProductCatalogEntry, error) {
					return nil, boom
				},
			},
		},
		{
			name: "create fails",
			store: &mockStore{
				CreateFunc: func(ctx context.Context, entry *domain.ProductCatalogEntry) error {
					return boom
				},
			},
			wantWrite: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := NewResolver(tt.store).Resolve(context.Background(), line("42", "X"))
			if ref != nil {
				t.Errorf("Expected nil ref, got %v", ref)
			}
			if !errors.Is(err, boom) {
				t.Fatalf("Expected wrapped cause, got %v", err)
			}

			var writeErr *WriteError
			var lookupErr *LookupError
			if tt.wantWrite {
				if !errors.As(err, &writeErr) || writeErr.Barcode != "42" {
					t.Errorf("Expected WriteError for 42, got %v", err)
				}
			} else if !errors.As(err, &lookupErr) || lookupErr.Barcode != "42" {
				t.Errorf("Expected LookupError for 42, got %v", err)
			}
		})
	}
}

func TestResolve_IdempotentAgainstStatefulStore(t *testing.T) {
	entries := map[string]*domain.ProductCatalogEntry{}
	store := &mockStore{
		FindByBarcodeFunc: func(ctx context.Context, key string) (*domain.ProductCatalogEntry, error) {
			return entries[key], nil
		},
		CreateFunc: func(ctx context.Context, entry *domain.ProductCatalogEntry) error {
			if _, ok := entries[entry.ID]; ok {
				return ErrAlreadyExists
			}
			cp := *entry
			entries[entry.ID] = &cp
			return nil
		},
	}
	r := NewResolver(store)

	first, err := r.Resolve(context.Background(), line("7891164005412", "Coffee"))
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := r.Resolve(context.Background(), line("7891164005412", "Another name"))
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected same entry, got %s and %s", first.ID, second.ID)
	}
	if len(entries) != 1 || entries["7891164005412"].Name != "Coffee" {
		t.Errorf("Expected single unchanged entry, got %+v", entries)
	}
}
