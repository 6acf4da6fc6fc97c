package extraction

import "strings"

const outputRules = "Rules:\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Use a dot as decimal separator and plain numbers for every amount.\n" +
	"- Do NOT wrap the response in code fences.\n"

// buildPrompt assembles the instructions sent with the document.
func buildPrompt(c Channel, t *Taxonomy, doc Document) string {
	var b strings.Builder

	switch c {
	case ChannelPDFPage:
		b.WriteString("You are a grocery receipt parser. The attached file is ONE page of a receipt.\n\n" +
			"Task:\n" +
			"- List every purchased product on this page, in printed order.\n" +
			"- Repeat a product if it is printed on several lines; do not merge lines.\n" +
			"- There is no store header on a single page: return only \"products\".\n\n")
	case ChannelPDFDocument:
		b.WriteString("You are a grocery receipt parser. The attached file is a full receipt.\n\n" +
			"Task:\n" +
			"- Extract the store name, the store tax registration number (CNPJ), full address, and purchase date.\n" +
			"- If the address allows it, add latitude and longitude; otherwise omit them.\n" +
			"- List every purchased product, in printed order. Do not merge repeated lines.\n\n")
	case ChannelURL:
		b.WriteString("You are a grocery receipt parser. Open the receipt page at this URL:\n" + doc.URL + "\n\n" +
			"Task:\n" +
			"- Extract the store name, the store tax registration number (CNPJ), full address, and purchase date.\n" +
			"- If the address allows it, add latitude and longitude; otherwise omit them.\n" +
			"- List every purchased product, in printed order. Do not merge repeated lines.\n\n")
	case ChannelQRCode:
		b.WriteString("You are a grocery receipt parser. The attached image contains a receipt QR code.\n\n" +
			"Task:\n" +
			"- Read the purchase it encodes and list every product with its name, quantity and unit price.\n\n")
	}

	if c.HasStore() {
		b.WriteString("Dates must use the format YYYY-MM-DD.\n\n")
	}

	if c.Categorized() {
		b.WriteString("For each product give barcode (empty string if none is printed), name, quantity, " +
			"unitOfMeasure, unitPrice, totalPrice, and brand when identifiable.\n\n")
		b.WriteString(t.Prompt())
		b.WriteString("\n")
	}

	b.WriteString(outputRules)
	return b.String()
}
