package core

import "sort"

// Taxonomy is the static category configuration that drives input
// selection. It is loaded once and referenced by value; it is not a
// foreign key, so records may carry freeform values.
type Taxonomy map[string]CategoryConfig

// CategoryConfig describes one category: either a flat subcategory list or
// a two-level grouping, plus the suppliers usually bought from.
type CategoryConfig struct {
	Subcategories []string
	// Groups maps a subcategory group to its subcategories. When set,
	// Subcategories is empty.
	Groups    map[string][]string
	Suppliers []string
}

// ExpenseTypes are the overhead expense labels offered by the entry form.
var ExpenseTypes = []string{
	"Facture Electricite",
	"Facture Eau",
	"Loyer",
	"Consommation",
	"Autre",
}

// DefaultTaxonomy mirrors the shop's historical category setup. Previously
// each page re-declared its own drifting copy; it lives here once now.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		"Depot":            {Subcategories: []string{"Medded", "Mlika", "Jamila"}},
		"Cake":             {Subcategories: []string{"Tom", "Moulin d'Or"}},
		"Produits Laitiers": {Subcategories: []string{"Lait", "Yaourt"}, Suppliers: []string{"Delice", "Vitalait", "Centrale"}},
		"Volaille":         {Subcategories: []string{"Mazra", "Jalel"}, Suppliers: []string{"SOTUVI", "CHA"}},
		"Farine":           {Suppliers: []string{"Grands Moulins", "Minoterie"}},
		"Liquides":         {Subcategories: []string{"Eau", "Boissons Gazeuses", "Jus"}, Suppliers: []string{"Cristal", "Coca-Cola", "Pepsi"}},
		"Hygiene & Beaute": {Groups: map[string][]string{
			"Hygiene": {"Judy", "Lilas", "Nawar", "Syso", "Sunsilk", "Autre"},
			"Beaute":  {"Yassine", "L'Oreal", "Autre"},
		}},
		"Fromage": {Subcategories: []string{"Majeste", "Landor", "Traditionnel"}},
		"Twebel":  {Subcategories: []string{"Twebel", "Elmalah"}},
		"Glace":   {Suppliers: []string{"Frigo", "Polar"}},
		"Daily":   {Subcategories: []string{"Gateaux", "Pain"}, Suppliers: []string{"Boulangerie du Coin", "Fournee Doree"}},
		"Animaux": {Subcategories: []string{"Pet's"}, Suppliers: []string{"Royal Canin", "Pedigree"}},
		"Maison":  {},
		"Divers":  {},
		"Autres":  {},
	}
}

// Categories returns the category names in sorted order for stable menus.
func (t Taxonomy) Categories() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubcategoriesFor flattens the subcategory choice for a category: the flat
// list when present, otherwise every grouped subcategory. Unknown
// categories return nil, leaving the field freeform.
func (t Taxonomy) SubcategoriesFor(category string) []string {
	cfg, ok := t[category]
	if !ok {
		return nil
	}
	if len(cfg.Subcategories) > 0 {
		return append([]string(nil), cfg.Subcategories...)
	}
	if len(cfg.Groups) == 0 {
		return nil
	}
	groups := make([]string, 0, len(cfg.Groups))
	for g := range cfg.Groups {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	var subs []string
	for _, g := range groups {
		subs = append(subs, cfg.Groups[g]...)
	}
	return subs
}

// SuppliersFor returns the supplier list for a category, nil when freeform.
func (t Taxonomy) SuppliersFor(category string) []string {
	cfg, ok := t[category]
	if !ok || len(cfg.Suppliers) == 0 {
		return nil
	}
	return append([]string(nil), cfg.Suppliers...)
}
