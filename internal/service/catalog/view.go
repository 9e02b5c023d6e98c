package catalog

import (
	"net/url"
	"strings"
	"sync"

	"colognehub/internal/domain"
)

// QueryCategory is the URL parameter mirroring a single selected category.
const QueryCategory = "category"

// DefaultPageSize is the number of products per catalog page.
const DefaultPageSize = 12

// Page is the derived state rendered by the shop view.
type Page struct {
	Items  []domain.Product `json:"items"`
	Info   PageInfo         `json:"pageInfo"`
	Bounds PriceRange       `json:"priceBounds"`
	Filter FilterSpec       `json:"filter"`
	Search string           `json:"search"`
	Sort   SortKey          `json:"sort"`
	Facets Facets           `json:"facets"`
}

// View holds the shop inputs and recomputes the visible page on demand.
// The page index resets whenever the filtered set's composition changes,
// but not when only the sort key changes.
type View struct {
	mu       sync.RWMutex
	pageSize int
	products []domain.Product
	bounds   PriceRange
	filter   FilterSpec
	search   string
	sort     SortKey
	page     int

	urlCategory string
	hydrated    bool
}

// NewView returns an empty view with the given page size.
func NewView(pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{pageSize: pageSize, page: 1}
}

// Hydrate records the category carried by the initial URL. It is applied
// once, on the first non-empty product list.
func (v *View) Hydrate(values url.Values) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hydrated {
		return
	}
	v.urlCategory = strings.TrimSpace(values.Get(QueryCategory))
	v.applyHydration()
}

// SetProducts replaces the loaded catalog. Price bounds are recomputed and
// the active price range is reset to them.
func (v *View) SetProducts(products []domain.Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.products = append([]domain.Product(nil), products...)
	v.bounds = PriceBounds(v.products)
	r := v.bounds
	v.filter.PriceRange = &r
	v.page = 1
	v.applyHydration()
}

func (v *View) applyHydration() {
	if v.hydrated || v.urlCategory == "" || len(v.products) == 0 {
		return
	}
	v.filter.Categories = []string{v.urlCategory}
	v.hydrated = true
	v.page = 1
}

// SetFilter replaces the filter and returns to page 1. A nil price range
// is replaced with the current bounds.
func (v *View) SetFilter(f FilterSpec) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f.Categories = append([]string(nil), f.Categories...)
	f.Brands = append([]string(nil), f.Brands...)
	if f.PriceRange == nil {
		r := v.bounds
		f.PriceRange = &r
	} else {
		r := *f.PriceRange
		f.PriceRange = &r
	}
	v.filter = f
	v.page = 1
}

// SetCategories changes only the category selection.
func (v *View) SetCategories(categories ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Categories = append([]string(nil), categories...)
	v.page = 1
}

// ClearFilters drops every constraint and resets the price range to the bounds.
func (v *View) ClearFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	r := v.bounds
	v.filter = FilterSpec{PriceRange: &r}
	v.page = 1
}

// SetSearch changes the search term and returns to page 1.
func (v *View) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = term
	v.page = 1
}

// SetSort changes the order and keeps the current page.
func (v *View) SetSort(key SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = key
}

// SetPage moves to page n; Current clamps it to the available pages.
func (v *View) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n < 1 {
		n = 1
	}
	v.page = n
}

// Query renders the URL parameters mirroring the filter. The category
// parameter is present only when exactly one category is selected.
func (v *View) Query() url.Values {
	v.mu.RLock()
	defer v.mu.RUnlock()
	q := url.Values{}
	if len(v.filter.Categories) == 1 {
		q.Set(QueryCategory, v.filter.Categories[0])
	}
	return q
}

// Product looks a loaded product up by ID.
func (v *View) Product(id string) (domain.Product, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, p := range v.products {
		if p.ProductID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Products returns the loaded catalog.
func (v *View) Products() []domain.Product {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]domain.Product(nil), v.products...)
}

// Current derives the visible page: search, filter, sort, then slice.
func (v *View) Current() Page {
	v.mu.RLock()
	defer v.mu.RUnlock()
	visible := Sort(Filter(Search(v.products, v.search), v.filter), v.sort)
	items, info := Paginate(visible, v.page, v.pageSize)
	filter := v.filter
	filter.Categories = append([]string(nil), v.filter.Categories...)
	filter.Brands = append([]string(nil), v.filter.Brands...)
	if v.filter.PriceRange != nil {
		r := *v.filter.PriceRange
		filter.PriceRange = &r
	}
	return Page{
		Items:  items,
		Info:   info,
		Bounds: v.bounds,
		Filter: filter,
		Search: v.search,
		Sort:   v.sort,
		Facets: FacetsOf(v.products),
	}
}
