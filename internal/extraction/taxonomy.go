package extraction

import (
	"fmt"
	"strings"
)

// Category is a top-level category with its allowed subcategories.
type Category struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

// Taxonomy is the fixed two-level classification every product line is
// checked against.
type Taxonomy struct {
	categories []Category
	index      map[string]map[string]bool // normalized category -> normalized subcategories
	names      map[string]string          // normalized category -> canonical name
}

// NewTaxonomy builds a Taxonomy from an ordered category list.
func NewTaxonomy(categories []Category) *Taxonomy {
	t := &Taxonomy{
		categories: categories,
		index:      make(map[string]map[string]bool, len(categories)),
		names:      make(map[string]string, len(categories)),
	}
	for _, c := range categories {
		key := normalizeCategory(c.Name)
		subs := make(map[string]bool, len(c.Subcategories))
		for _, s := range c.Subcategories {
			subs[normalizeCategory(s)] = true
		}
		t.index[key] = subs
		t.names[key] = c.Name
	}
	return t
}

var defaultTaxonomy = NewTaxonomy([]Category{
	{Name: "Fruits & Vegetables", Subcategories: []string{"Fruits", "Vegetables", "Herbs & Greens", "Organic Produce"}},
	{Name: "Meat & Seafood", Subcategories: []string{"Beef", "Pork", "Poultry", "Fish & Seafood", "Sausages & Cold Cuts"}},
	{Name: "Dairy & Eggs", Subcategories: []string{"Milk", "Cheese", "Yogurt", "Butter & Cream", "Eggs"}},
	{Name: "Bakery", Subcategories: []string{"Bread", "Cakes & Pastries", "Cookies & Biscuits"}},
	{Name: "Pantry", Subcategories: []string{
		"Rice & Grains", "Pasta", "Beans & Legumes", "Oils & Vinegar", "Sauces & Condiments",
		"Spices", "Canned Goods", "Breakfast & Cereals", "Coffee & Tea", "Sugar & Sweeteners", "Flour & Baking",
	}},
	{Name: "Frozen Foods", Subcategories: []string{"Frozen Meals", "Ice Cream", "Frozen Vegetables"}},
	{Name: "Beverages", Subcategories: []string{"Water", "Soft Drinks", "Juices", "Alcoholic Beverages", "Energy & Sports Drinks"}},
	{Name: "Snacks & Sweets", Subcategories: []string{"Chips & Crackers", "Chocolate & Candy", "Nuts & Dried Fruit"}},
	{Name: "Cleaning", Subcategories: []string{"Laundry", "Dishwashing", "Surface Cleaners", "Paper & Disposables"}},
	{Name: "Personal Care", Subcategories: []string{"Hair Care", "Oral Care", "Skin Care", "Deodorant", "Shaving", "Feminine Care"}},
	{Name: "Baby & Kids", Subcategories: []string{"Diapers", "Baby Food", "Baby Care"}},
	{Name: "Pets", Subcategories: []string{"Pet Food", "Pet Care"}},
	{Name: "Pharmacy & Health", Subcategories: []string{"Medicines", "Vitamins & Supplements", "First Aid"}},
	{Name: "Household & Others", Subcategories: []string{"Kitchenware", "Home Maintenance", "Stationery", "Other"}},
})

// DefaultTaxonomy returns the built-in grocery taxonomy.
func DefaultTaxonomy() *Taxonomy {
	return defaultTaxonomy
}

// Categories returns the categories in display order.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// CategoryNames returns the top-level names in display order.
func (t *Taxonomy) CategoryNames() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// SubcategoryNames returns every subcategory name across all categories.
func (t *Taxonomy) SubcategoryNames() []string {
	var names []string
	for _, c := range t.categories {
		names = append(names, c.Subcategories...)
	}
	return names
}

// Validate checks a category and optional subcategory.
// An empty subcategory is always accepted.
func (t *Taxonomy) Validate(category, subcategory string) error {
	normCat := normalizeCategory(category)
	subs, ok := t.index[normCat]
	if !ok {
		return fmt.Errorf("invalid category: %q", category)
	}

	normSub := normalizeCategory(subcategory)
	if normSub == "" {
		return nil
	}
	if !subs[normSub] {
		return fmt.Errorf("invalid subcategory %q for category %q", subcategory, t.names[normCat])
	}
	return nil
}

// Canonical returns the configured spelling of category, or category itself
// when it is unknown.
func (t *Taxonomy) Canonical(category string) string {
	if name, ok := t.names[normalizeCategory(category)]; ok {
		return name
	}
	return category
}

// Prompt renders the taxonomy as instructions for the model.
func (t *Taxonomy) Prompt() string {
	var b strings.Builder
	b.WriteString("Use ONLY the following categories and subcategories:\n\n")

	for _, c := range t.categories {
		b.WriteString(c.Name + ":\n")
		for _, s := range c.Subcategories {
			b.WriteString("  - " + s + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("CATEGORY ASSIGNMENT RULES:\n")
	b.WriteString("1. \"category\" must be EXACTLY one of the category names shown above.\n")
	b.WriteString("2. \"subcategory\" must be one of the subcategories listed under the chosen category.\n")
	b.WriteString("3. If no subcategory fits, omit \"subcategory\". Never invent a new one.\n")
	b.WriteString("4. If you are unsure about the category, use \"Household & Others\".\n")

	return b.String()
}

// normalizeCategory uppercases and trims a name for comparison.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}
