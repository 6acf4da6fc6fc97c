package extraction

import "google.golang.org/genai"

func productSchema(t *Taxonomy) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"barcode":       {Type: genai.TypeString, Description: "EAN/GTIN code as printed, empty if absent"},
			"name":          {Type: genai.TypeString},
			"quantity":      {Type: genai.TypeNumber},
			"unitOfMeasure": {Type: genai.TypeString, Description: "e.g. un, kg, l"},
			"unitPrice":     {Type: genai.TypeNumber},
			"totalPrice":    {Type: genai.TypeNumber},
			"brand":         {Type: genai.TypeString},
			"category":      {Type: genai.TypeString, Format: "enum", Enum: t.CategoryNames()},
			"subcategory":   {Type: genai.TypeString, Format: "enum", Enum: t.SubcategoryNames()},
		},
		Required: []string{"barcode", "name", "quantity", "unitOfMeasure", "unitPrice", "totalPrice", "category"},
		PropertyOrdering: []string{
			"barcode", "name", "quantity", "unitOfMeasure", "unitPrice", "totalPrice", "brand", "category", "subcategory",
		},
	}
}

func qrProductSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":     {Type: genai.TypeString},
			"quantity": {Type: genai.TypeNumber},
			"price":    {Type: genai.TypeNumber, Description: "price of one unit"},
		},
		Required:         []string{"name", "quantity", "price"},
		PropertyOrdering: []string{"name", "quantity", "price"},
	}
}

// ResponseSchema returns the structured-output schema for channel c.
func ResponseSchema(c Channel, t *Taxonomy) *genai.Schema {
	if c == ChannelQRCode {
		return &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"products": {Type: genai.TypeArray, Items: qrProductSchema()},
			},
			Required: []string{"products"},
		}
	}

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"products": {Type: genai.TypeArray, Items: productSchema(t)},
		},
		Required: []string{"products"},
	}

	if c.HasStore() {
		schema.Properties["storeName"] = &genai.Schema{Type: genai.TypeString}
		schema.Properties["date"] = &genai.Schema{Type: genai.TypeString, Description: "purchase date as YYYY-MM-DD"}
		schema.Properties["cnpj"] = &genai.Schema{Type: genai.TypeString, Description: "store tax registration number"}
		schema.Properties["address"] = &genai.Schema{Type: genai.TypeString}
		schema.Properties["latitude"] = &genai.Schema{Type: genai.TypeNumber}
		schema.Properties["longitude"] = &genai.Schema{Type: genai.TypeNumber}
		schema.Required = append(schema.Required, "storeName", "date", "cnpj", "address")
		schema.PropertyOrdering = []string{"storeName", "date", "cnpj", "address", "latitude", "longitude", "products"}
	}

	return schema
}
