package types

// Category identifies a reference dataset the resolver can search.
type Category string

const (
	CategorySupplier      Category = "supplier"
	CategoryPlant         Category = "plant"
	CategoryMaterial      Category = "material"
	CategoryPurchaseOrg   Category = "purchase_org"
	CategoryPurchaseGroup Category = "purchase_group"
	CategoryCurrency      Category = "currency"
)

// SearchLimit returns the maximum candidate count the resolver accepts for
// the category. Caps keep a near-empty query from producing unbounded lists.
func (c Category) SearchLimit() int {
	switch c {
	case CategoryCurrency:
		return 50
	case CategorySupplier, CategoryMaterial:
		return 10
	default:
		return 5
	}
}

// DisplayName returns the human-readable label used in prompts.
func (c Category) DisplayName() string {
	switch c {
	case CategorySupplier:
		return "supplier"
	case CategoryPlant:
		return "plant"
	case CategoryMaterial:
		return "material"
	case CategoryPurchaseOrg:
		return "purchase organization"
	case CategoryPurchaseGroup:
		return "purchase group"
	case CategoryCurrency:
		return "currency"
	default:
		return string(c)
	}
}

// ReferenceRecord is an entity returned by a reference lookup. Identity is
// ID. Records are owned by the datastore and never mutated by the dialogue.
type ReferenceRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
	// Attrs carries category-specific extras (unit, email, symbol).
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Attr returns a category-specific attribute, or "" when absent.
func (r ReferenceRecord) Attr(key string) string {
	if r.Attrs == nil {
		return ""
	}
	return r.Attrs[key]
}
