// Package catalog derives the visible page of products from the loaded
// catalog, a search term, a filter and a sort key.
package catalog

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"colognehub/internal/domain"
)

// SortKey orders the filtered products.
type SortKey string

const (
	SortFeatured  SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortRating    SortKey = "rating"
	SortBrand     SortKey = "brand"
)

// ParseSortKey maps a query value to a SortKey. Unknown values keep the
// catalog order.
func ParseSortKey(v string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(v))); k {
	case SortPriceAsc, SortPriceDesc, SortRating, SortBrand:
		return k
	default:
		return SortFeatured
	}
}

// PriceRange is a closed interval of retail prices.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies within the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// FilterSpec combines every active constraint. Dimensions are ANDed; values
// within Categories or Brands are ORed. A nil PriceRange and a zero MinRating
// do not constrain.
type FilterSpec struct {
	Categories []string    `json:"categories"`
	Brands     []string    `json:"brands"`
	PriceRange *PriceRange `json:"priceRange,omitempty"`
	MinRating  float64     `json:"rating"`
}

// Predicate is one filter dimension.
type Predicate func(domain.Product) bool

// Predicates returns one predicate per active dimension.
func (f FilterSpec) Predicates() []Predicate {
	var preds []Predicate
	if len(f.Categories) > 0 {
		set := toSet(f.Categories)
		preds = append(preds, func(p domain.Product) bool { return set[p.Category] })
	}
	if len(f.Brands) > 0 {
		set := toSet(f.Brands)
		preds = append(preds, func(p domain.Product) bool { return set[p.Brand] })
	}
	if f.PriceRange != nil {
		r := *f.PriceRange
		preds = append(preds, func(p domain.Product) bool { return r.Contains(p.RetailPrice) })
	}
	if f.MinRating > 0 {
		floor := f.MinRating
		preds = append(preds, func(p domain.Product) bool { return p.Rating >= floor })
	}
	return preds
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// Search keeps products whose name, brand, category or any tag contains
// term, ignoring case. An empty term keeps everything.
func Search(products []domain.Product, term string) []domain.Product {
	term = strings.TrimSpace(term)
	if term == "" {
		return products
	}
	fold := cases.Fold()
	needle := fold.String(term)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matchesTerm(fold, p, needle) {
			out = append(out, p)
		}
	}
	return out
}

func matchesTerm(fold cases.Caser, p domain.Product, needle string) bool {
	fields := append([]string{p.Name, p.Brand, p.Category}, p.Tags...)
	for _, f := range fields {
		if strings.Contains(fold.String(f), needle) {
			return true
		}
	}
	return false
}

// Filter keeps products satisfying every predicate of spec.
func Filter(products []domain.Product, spec FilterSpec) []domain.Product {
	return Apply(products, spec.Predicates()...)
}

// Apply keeps products satisfying every predicate, in any order given.
func Apply(products []domain.Product, preds ...Predicate) []domain.Product {
	out := make([]domain.Product, 0, len(products))
next:
	for _, p := range products {
		for _, pred := range preds {
			if !pred(p) {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}

// Sort returns a reordered copy of products.
func Sort(products []domain.Product, key SortKey) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)
	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].RetailPrice < out[j].RetailPrice })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].RetailPrice > out[j].RetailPrice })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case SortBrand:
		fold := cases.Fold()
		sort.SliceStable(out, func(i, j int) bool {
			return fold.String(out[i].Brand) < fold.String(out[j].Brand)
		})
	}
	return out
}

// PageInfo describes one slice of the filtered set.
type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Paginate returns the page-th slice (1-based) of size items. Out of range
// pages are clamped.
func Paginate(products []domain.Product, page, size int) ([]domain.Product, PageInfo) {
	if size <= 0 {
		size = len(products)
		if size == 0 {
			size = 1
		}
	}
	total := len(products)
	pages := int(math.Ceil(float64(total) / float64(size)))
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return products[start:end], PageInfo{Page: page, PageSize: size, Total: total, TotalPages: pages}
}

// PriceBounds returns the [min, max] retail price of products, or [0, 0]
// for an empty list.
func PriceBounds(products []domain.Product) PriceRange {
	if len(products) == 0 {
		return PriceRange{}
	}
	r := PriceRange{Min: products[0].RetailPrice, Max: products[0].RetailPrice}
	for _, p := range products[1:] {
		if p.RetailPrice < r.Min {
			r.Min = p.RetailPrice
		}
		if p.RetailPrice > r.Max {
			r.Max = p.RetailPrice
		}
	}
	return r
}

// Facets lists the distinct values offered by the filter sidebar.
type Facets struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
}

// FacetsOf collects distinct categories and brands, sorted.
func FacetsOf(products []domain.Product) Facets {
	cats := map[string]bool{}
	brands := map[string]bool{}
	for _, p := range products {
		if p.Category != "" {
			cats[p.Category] = true
		}
		if p.Brand != "" {
			brands[p.Brand] = true
		}
	}
	return Facets{Categories: sortedKeys(cats), Brands: sortedKeys(brands)}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
