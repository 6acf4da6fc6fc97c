package extraction

import (
	"strings"
	"testing"
)

func TestTaxonomy_Validate(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := []struct {
		name        string
		category    string
		subcategory string
		wantErr     bool
	}{
		{"valid pair", "Pantry", "Coffee & Tea", false},
		{"different case", "pantry", "coffee & tea", false},
		{"extra spaces", "  Dairy   &  Eggs ", " Milk ", false},
		{"no subcategory", "Bakery", "", false},
		{"unknown category", "Electronics", "", true},
		{"subcategory of another category", "Bakery", "Milk", true},
		{"invented subcategory", "Pets", "Pet Toys", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tax.Validate(tt.category, tt.subcategory)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultTaxonomy_Shape(t *testing.T) {
	cats := DefaultTaxonomy().Categories()
	if len(cats) != 14 {
		t.Errorf("Expected 14 categories, got %d", len(cats))
	}
	for _, c := range cats {
		if len(c.Subcategories) == 0 {
			t.Errorf("Category %q has no subcategories", c.Name)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Pantry", "PANTRY"},
		{"  fruits &  vegetables ", "FRUITS & VEGETABLES"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeCategory(tt.input); got != tt.want {
				t.Errorf("normalizeCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantMIME string
		wantData string
		wantErr  bool
	}{
		{"pdf", "data:application/pdf;base64,JVBERi0xLjQ=", "application/pdf", "%PDF-1.4", false},
		{"png", "data:image/png;base64,aGVsbG8=", "image/png", "hello", false},
		{"not a data uri", "https://example.com/a.pdf", "", "", true},
		{"not base64", "data:text/plain,hello", "", "", true},
		{"missing mime", "data:;base64,aGVsbG8=", "", "", true},
		{"bad payload", "data:image/png;base64,!!!", "", "", true},
		{"empty payload", "data:image/png;base64,", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDataURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDataURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if doc.MIMEType != tt.wantMIME || string(doc.Data) != tt.wantData {
				t.Errorf("ParseDataURI() = %q %q", doc.MIMEType, doc.Data)
			}
		})
	}
}

func TestResponseSchema(t *testing.T) {
	tax := DefaultTaxonomy()

	page := ResponseSchema(ChannelPDFPage, tax)
	if _, ok := page.Properties["storeName"]; ok {
		t.Error("Single page schema must not ask for store metadata")
	}

	full := ResponseSchema(ChannelPDFDocument, tax)
	for _, key := range []string{"storeName", "date", "cnpj", "address", "latitude", "longitude"} {
		if _, ok := full.Properties[key]; !ok {
			t.Errorf("Document schema missing %q", key)
		}
	}

	qr := ResponseSchema(ChannelQRCode, tax).Properties["products"].Items
	if len(qr.Properties) != 3 {
		t.Errorf("Expected QR products with 3 fields, got %d", len(qr.Properties))
	}

	cat := page.Properties["products"].Items.Properties["category"]
	if len(cat.Enum) != 14 {
		t.Errorf("Expected category enum of 14, got %d", len(cat.Enum))
	}
}

func TestBuildPrompt(t *testing.T) {
	tax := DefaultTaxonomy()

	urlPrompt := buildPrompt(ChannelURL, tax, Document{URL: "https://example.com/r/1"})
	if !strings.Contains(urlPrompt, "https://example.com/r/1") {
		t.Error("URL prompt must contain the URL")
	}
	if !strings.Contains(urlPrompt, "Coffee & Tea") {
		t.Error("Categorized prompts must list the taxonomy")
	}

	qrPrompt := buildPrompt(ChannelQRCode, tax, Document{})
	if strings.Contains(qrPrompt, "CATEGORY ASSIGNMENT RULES") {
		t.Error("QR prompt must not ask for categories")
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Here you go: {\"a\":1} hope it helps", `{"a":1}`},
	}

	for _, tt := range tests {
		if got := cleanModelJSON(tt.in); got != tt.want {
			t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
