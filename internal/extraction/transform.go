package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/titorm/shop-wise-sub000/internal/domain"
)

// cleanModelJSON strips Markdown fences and any text around the top-level object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}

	return s
}

// decodeObject parses model text into a generic object, keeping numbers as json.Number.
func decodeObject(text string) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(cleanModelJSON(text))))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("model returned null")
	}
	return obj, nil
}

// transformModelOutput validates a decoded response against the contract of
// channel c and converts it to a Result.
func transformModelOutput(c Channel, t *Taxonomy, raw map[string]interface{}) (*Result, error) {
	productsAny, ok := raw["products"]
	if !ok {
		return nil, fmt.Errorf("missing 'products' key in model output")
	}
	productSlice, ok := productsAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("'products' is %T, want array", productsAny)
	}

	res := &Result{
		Channel:  c,
		Products: make([]domain.RawLineItem, 0, len(productSlice)),
		Raw:      raw,
	}

	for i, p := range productSlice {
		obj, ok := p.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("product %d is %T, want object", i, p)
		}

		var item domain.RawLineItem
		var err error
		if c == ChannelQRCode {
			item, err = transformQRProduct(obj)
		} else {
			item, err = transformProduct(obj, t)
		}
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		res.Products = append(res.Products, item)
	}

	if c.HasStore() {
		store, date, err := transformStore(raw)
		if err != nil {
			return nil, err
		}
		res.Store = store
		res.Date = date
	}

	return res, nil
}

func transformProduct(obj map[string]interface{}, t *Taxonomy) (domain.RawLineItem, error) {
	var item domain.RawLineItem

	barcode, err := getStringField(obj, "barcode", false)
	if err != nil {
		return item, err
	}
	name, err := getStringField(obj, "name", true)
	if err != nil {
		return item, err
	}
	category, err := getStringField(obj, "category", true)
	if err != nil {
		return item, err
	}
	unit, err := getOptionalStringField(obj, "unitOfMeasure")
	if err != nil {
		return item, err
	}
	brand, err := getOptionalStringField(obj, "brand")
	if err != nil {
		return item, err
	}
	subcategory, err := getOptionalStringField(obj, "subcategory")
	if err != nil {
		return item, err
	}

	quantity, err := getDecimalField(obj, "quantity")
	if err != nil {
		return item, err
	}
	unitPrice, err := getDecimalField(obj, "unitPrice")
	if err != nil {
		return item, err
	}
	totalPrice, err := getDecimalField(obj, "totalPrice")
	if err != nil {
		return item, err
	}

	if err := t.Validate(category, domain.StringValue(subcategory)); err != nil {
		return item, err
	}

	return domain.RawLineItem{
		Barcode:       strings.TrimSpace(barcode),
		Name:          strings.TrimSpace(name),
		Quantity:      quantity,
		UnitOfMeasure: unit,
		UnitPrice:     unitPrice,
		TotalPrice:    totalPrice,
		Brand:         brand,
		Category:      t.Canonical(category),
		Subcategory:   subcategory,
	}, nil
}

// transformQRProduct maps the coarse QR shape. price is the unit price.
func transformQRProduct(obj map[string]interface{}) (domain.RawLineItem, error) {
	name, err := getStringField(obj, "name", true)
	if err != nil {
		return domain.RawLineItem{}, err
	}
	quantity, err := getDecimalField(obj, "quantity")
	if err != nil {
		return domain.RawLineItem{}, err
	}
	price, err := getDecimalField(obj, "price")
	if err != nil {
		return domain.RawLineItem{}, err
	}

	return domain.RawLineItem{
		Name:       strings.TrimSpace(name),
		Quantity:   quantity,
		UnitPrice:  price,
		TotalPrice: price.Mul(quantity),
	}, nil
}

func transformStore(raw map[string]interface{}) (*domain.StoreInfo, *civil.Date, error) {
	name, err := getStringField(raw, "storeName", true)
	if err != nil {
		return nil, nil, err
	}
	dateStr, err := getStringField(raw, "date", true)
	if err != nil {
		return nil, nil, err
	}
	taxID, err := getStringField(raw, "cnpj", false)
	if err != nil {
		return nil, nil, err
	}
	address, err := getStringField(raw, "address", false)
	if err != nil {
		return nil, nil, err
	}
	lat, err := getOptionalFloat64Field(raw, "latitude")
	if err != nil {
		return nil, nil, err
	}
	lng, err := getOptionalFloat64Field(raw, "longitude")
	if err != nil {
		return nil, nil, err
	}

	date, err := civil.ParseDate(strings.TrimSpace(dateStr))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	return &domain.StoreInfo{
		Name:      strings.TrimSpace(name),
		TaxID:     strings.TrimSpace(taxID),
		Address:   strings.TrimSpace(address),
		Latitude:  lat,
		Longitude: lng,
	}, &date, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		return domain.StringPtr(val), nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

// getDecimalField reads a required non-negative number.
func getDecimalField(m map[string]interface{}, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return decimal.Zero, fmt.Errorf("missing required field %q", key)
	}
	n, ok := v.(json.Number)
	if !ok {
		return decimal.Zero, fmt.Errorf("field %q has type %T, want number", key, v)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %q: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("field %q is negative: %s", key, d)
	}
	return d, nil
}

func getOptionalFloat64Field(m map[string]interface{}, key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return nil, fmt.Errorf("field %q has type %T, want number or null", key, v)
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return &f, nil
}
