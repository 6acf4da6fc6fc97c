package firestore

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/titorm/shop-wise-sub000/internal/domain"
)

func TestEncodePurchase(t *testing.T) {
	lat := -23.5
	p := &domain.Purchase{
		StoreName:   "Mercado",
		Date:        civil.Date{Year: 2024, Month: 3, Day: 15},
		TotalAmount: decimal.RequireFromString("26.97"),
		Store:       &domain.StoreInfo{Name: "Mercado", TaxID: "123", Latitude: &lat},
	}

	doc := encodePurchase(p)

	if doc.Date != "2024-03-15" {
		t.Errorf("Expected date 2024-03-15, got %q", doc.Date)
	}
	if doc.TotalAmount != 26.97 {
		t.Errorf("Expected total 26.97, got %v", doc.TotalAmount)
	}
	if doc.Store == nil || doc.Store.TaxID != "123" || *doc.Store.Latitude != -23.5 {
		t.Errorf("Unexpected store: %+v", doc.Store)
	}
	if doc.TotalAmountExact != "26.97" {
		t.Errorf("Expected exact total 26.97, got %q", doc.TotalAmountExact)
	}
}

func TestPurchaseDoc_ExactRoundTrip(t *testing.T) {
	// 17 significant digits do not fit a float64.
	total := decimal.RequireFromString("99999999999999999.99")

	got, err := purchaseFromDoc("h1", "p1", encodePurchase(&domain.Purchase{StoreName: "Atacado", TotalAmount: total}))
	if err != nil {
		t.Fatalf("purchaseFromDoc: %v", err)
	}
	if got.TotalAmount.String() != "99999999999999999.99" {
		t.Errorf("Expected exact total, got %s", got.TotalAmount)
	}
}

func TestItemDoc_ExactRoundTrip(t *testing.T) {
	s := &PurchaseStore{}
	item := domain.PurchaseItem{
		ID:         "i1",
		Name:       "Queijo",
		Quantity:   decimal.RequireFromString("0.123456789012345678"),
		UnitPrice:  decimal.RequireFromString("0.1").Add(decimal.RequireFromString("0.2")),
		TotalPrice: decimal.RequireFromString("12345678901234567.89"),
	}

	doc := s.encodeItem(item, 0)
	got, err := itemFromDoc("i1", doc)
	if err != nil {
		t.Fatalf("itemFromDoc: %v", err)
	}

	if got.Quantity.String() != "0.123456789012345678" {
		t.Errorf("quantity = %s", got.Quantity)
	}
	if got.UnitPrice.String() != "0.3" {
		t.Errorf("unitPrice = %s", got.UnitPrice)
	}
	if got.TotalPrice.String() != "12345678901234567.89" {
		t.Errorf("totalPrice = %s", got.TotalPrice)
	}
	if !got.SameContent(item) {
		t.Errorf("round trip changed the item: %+v", got)
	}
}

func TestItemFromDoc_FloatOnlyDocument(t *testing.T) {
	got, err := itemFromDoc("old", itemDoc{Name: "Pão", Quantity: 2, UnitPrice: 0.75, TotalPrice: 1.5})
	if err != nil {
		t.Fatalf("itemFromDoc: %v", err)
	}
	if got.Quantity.String() != "2" || got.UnitPrice.String() != "0.75" || got.TotalPrice.String() != "1.5" {
		t.Errorf("Unexpected amounts: %+v", got)
	}

	if _, err := itemFromDoc("bad", itemDoc{QuantityExact: "two"}); err == nil {
		t.Error("Expected error for malformed exact quantity")
	}
}

func TestEncodePurchase_ZeroDate(t *testing.T) {
	doc := encodePurchase(&domain.Purchase{StoreName: "Feira"})
	if doc.Date != "" || doc.Store != nil {
		t.Errorf("Expected empty date and store, got %+v", doc)
	}
}

func TestOptionalValue(t *testing.T) {
	if v := optionalValue(nil); v != nil {
		t.Errorf("Expected untyped nil, got %#v", v)
	}
	kg := "kg"
	if v := optionalValue(&kg); v != "kg" {
		t.Errorf("Expected kg, got %#v", v)
	}
}
