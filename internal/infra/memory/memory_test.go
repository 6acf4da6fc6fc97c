package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/titorm/shop-wise-sub000/internal/catalog"
	"github.com/titorm/shop-wise-sub000/internal/domain"
	"github.com/titorm/shop-wise-sub000/internal/purchase"
)

func item(id, total string) domain.PurchaseItem {
	return domain.PurchaseItem{
		ID:         id,
		Name:       id,
		Quantity:   decimal.NewFromInt(1),
		UnitPrice:  decimal.RequireFromString(total),
		TotalPrice: decimal.RequireFromString(total),
	}
}

func seed(s *PurchaseStore) {
	s.Put(domain.Purchase{
		ID:          "p1",
		HouseholdID: "h1",
		StoreName:   "Mercado",
		TotalAmount: decimal.RequireFromString("6"),
	}, []domain.PurchaseItem{item("a", "1"), item("b", "2"), item("c", "3")})
}

func TestCatalogStore_CreateIfAbsent(t *testing.T) {
	s := NewCatalogStore()
	ctx := context.Background()

	entry := &domain.ProductCatalogEntry{ID: "123", Name: "Coffee"}
	if err := s.Create(ctx, entry); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	err := s.Create(ctx, &domain.ProductCatalogEntry{ID: "123", Name: "Other"})
	if !errors.Is(err, catalog.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.FindByBarcode(ctx, "123")
	if err != nil || got == nil || got.Name != "Coffee" {
		t.Errorf("FindByBarcode = (%+v, %v)", got, err)
	}

	missing, err := s.FindByBarcode(ctx, "999")
	if err != nil || missing != nil {
		t.Errorf("Expected (nil, nil) for missing key, got (%+v, %v)", missing, err)
	}
}

func TestPurchaseStore_Apply(t *testing.T) {
	s := NewPurchaseStore()
	seed(s)
	ctx := context.Background()

	plan := &purchase.Plan{
		HouseholdID: "h1",
		PurchaseID:  "p1",
		Updates:     []domain.PurchaseItem{item("a", "10")},
		Deletes:     []string{"b"},
		Inserts:     []domain.PurchaseItem{item("d", "4")},
		TotalAmount: decimal.RequireFromString("17"),
	}
	if err := s.Apply(ctx, plan); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	items, _ := s.ListItems(ctx, "h1", "p1")
	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "c" || ids[2] != "d" {
		t.Errorf("Expected [a c d], got %v", ids)
	}
	if !items[0].TotalPrice.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected updated a, got %s", items[0].TotalPrice)
	}

	p, _ := s.GetPurchase(ctx, "h1", "p1")
	if !p.TotalAmount.Equal(decimal.NewFromInt(17)) {
		t.Errorf("Expected total 17, got %s", p.TotalAmount)
	}
}

func TestPurchaseStore_ApplyIsAtomic(t *testing.T) {
	tests := []struct {
		name string
		plan *purchase.Plan
		fail int
	}{
		{
			name: "injected failure mid-batch",
			plan: &purchase.Plan{
				Updates: []domain.PurchaseItem{item("a", "10")},
				Deletes: []string{"b"},
				Inserts: []domain.PurchaseItem{item("d", "4")},
			},
			fail: 2,
		},
		{
			name: "update of missing item after a delete",
			plan: &purchase.Plan{
				Deletes: []string{"b"},
				Updates: []domain.PurchaseItem{item("zz", "10")},
			},
		},
		{
			name: "insert colliding with existing id",
			plan: &purchase.Plan{
				Deletes: []string{"a"},
				Inserts: []domain.PurchaseItem{item("c", "4")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPurchaseStore()
			seed(s)
			s.FailAfter = tt.fail
			ctx := context.Background()

			tt.plan.HouseholdID = "h1"
			tt.plan.PurchaseID = "p1"
			tt.plan.TotalAmount = decimal.NewFromInt(99)

			if err := s.Apply(ctx, tt.plan); err == nil {
				t.Fatal("Expected Apply to fail")
			}

			items, _ := s.ListItems(ctx, "h1", "p1")
			if len(items) != 3 || items[0].ID != "a" || items[1].ID != "b" || items[2].ID != "c" {
				t.Errorf("Items changed after failed apply: %+v", items)
			}
			if !items[0].TotalPrice.Equal(decimal.NewFromInt(1)) {
				t.Errorf("Item a changed after failed apply: %s", items[0].TotalPrice)
			}
			p, _ := s.GetPurchase(ctx, "h1", "p1")
			if !p.TotalAmount.Equal(decimal.NewFromInt(6)) {
				t.Errorf("Total changed after failed apply: %s", p.TotalAmount)
			}
		})
	}
}

func TestPurchaseStore_ApplyCreatesHeader(t *testing.T) {
	s := NewPurchaseStore()
	ctx := context.Background()

	header := domain.Purchase{ID: "p2", HouseholdID: "h1", StoreName: "Feira"}
	plan := &purchase.Plan{
		HouseholdID: "h1",
		PurchaseID:  "p2",
		Header:      &header,
		Inserts:     []domain.PurchaseItem{item("x", "5")},
		TotalAmount: decimal.NewFromInt(5),
	}
	if err := s.Apply(ctx, plan); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := s.Apply(ctx, plan); err == nil {
		t.Error("Expected second create to fail")
	}

	p, err := s.GetPurchase(ctx, "h1", "p2")
	if err != nil {
		t.Fatalf("GetPurchase: %v", err)
	}
	if p.StoreName != "Feira" || !p.TotalAmount.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Unexpected purchase: %+v", p)
	}
}

func TestPurchaseStore_NotFound(t *testing.T) {
	s := NewPurchaseStore()
	_, err := s.GetPurchase(context.Background(), "h1", "nope")
	if !errors.Is(err, purchase.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
