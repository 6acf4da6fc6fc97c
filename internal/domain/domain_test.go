package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeBarcode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"7891164005412", "7891164005412"},
		{"789-1164.005412", "7891164005412"},
		{"  7891164005412\n", "7891164005412"},
		{"EAN:7891164005412;", "7891164005412"},
		{"--", ""},
		{"", ""},
		{"٣٤٥", ""}, // non-ASCII digits are not barcode digits
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeBarcode(tt.in); got != tt.want {
				t.Errorf("NormalizeBarcode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestItemID_JSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ItemID
		wantErr bool
	}{
		{"existing", `{"existing":"abc"}`, ExistingItem("abc"), false},
		{"new", `{"new":"tmp-1"}`, NewItem("tmp-1"), false},
		{"both", `{"existing":"abc","new":"tmp-1"}`, ItemID{}, true},
		{"neither", `{}`, ItemID{}, true},
		{"empty existing", `{"existing":""}`, ItemID{}, true},
		{"plain string", `"new-123"`, ItemID{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ItemID
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Unmarshal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestItemID_SentinelPrefixIsNotSpecial(t *testing.T) {
	// A persisted id that happens to look like a temporary one stays "existing".
	id := ExistingItem("new-42")
	if id.IsNew() {
		t.Error("ExistingItem(\"new-42\").IsNew() = true, want false")
	}

	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"existing":"new-42"}` {
		t.Errorf("Marshal = %s", data)
	}
}

func TestPurchaseItem_SameContent(t *testing.T) {
	base := PurchaseItem{
		ID:         "a",
		Product:    &ProductRef{ID: "7891164005412"},
		Name:       "Coffee 500g",
		Quantity:   decimal.NewFromInt(1),
		UnitPrice:  decimal.RequireFromString("8.99"),
		TotalPrice: decimal.RequireFromString("8.99"),
	}

	same := base
	same.ID = "b"
	same.TotalPrice = decimal.RequireFromString("8.990")
	if !base.SameContent(same) {
		t.Error("Expected items differing only by id and trailing zeros to be equal")
	}

	changed := base
	changed.Quantity = decimal.NewFromInt(2)
	if base.SameContent(changed) {
		t.Error("Expected quantity change to be detected")
	}

	unlinked := base
	unlinked.Product = nil
	if base.SameContent(unlinked) {
		t.Error("Expected product link change to be detected")
	}
}
