package catalog

import (
	"math/rand"
	"testing"

	"colognehub/internal/domain"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ProductID: "p1", Name: "Bleu de Chanel", Brand: "Chanel", Category: domain.CategoryMen, Tags: []string{"woody", "fresh"}, Rating: 4.5, RetailPrice: 135},
		{ProductID: "p2", Name: "Sauvage", Brand: "Dior", Category: domain.CategoryMen, Tags: []string{"spicy"}, Rating: 4, RetailPrice: 110},
		{ProductID: "p3", Name: "J'adore", Brand: "Dior", Category: domain.CategoryWomen, Tags: []string{"floral"}, Rating: 5, RetailPrice: 150},
		{ProductID: "p4", Name: "CK One", Brand: "calvin klein", Category: domain.CategoryUnisex, Tags: []string{"Citrus"}, Rating: 3.5, RetailPrice: 45},
		{ProductID: "p5", Name: "Light Blue", Brand: "Dolce & Gabbana", Category: domain.CategoryWomen, Rating: 4, RetailPrice: 80},
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ProductID
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearchMatchesAnyFieldIgnoringCase(t *testing.T) {
	products := sampleProducts()
	cases := map[string][]string{
		"":         ids(products),
		"DIOR":     {"p2", "p3"},
		"citrus":   {"p4"},
		"women":    {"p3", "p5"},
		"bleu":     {"p1"},
		"nothing!": {},
	}
	for term, want := range cases {
		got := ids(Search(products, term))
		if !sameIDs(got, want) {
			t.Fatalf("search %q: expected %v, got %v", term, want, got)
		}
	}
}

func TestFilterPredicateOrderDoesNotMatter(t *testing.T) {
	products := sampleProducts()
	specs := []FilterSpec{
		{Categories: []string{domain.CategoryMen, domain.CategoryWomen}, Brands: []string{"Dior"}},
		{Brands: []string{"Dior", "Chanel"}, MinRating: 4.5},
		{PriceRange: &PriceRange{Min: 50, Max: 140}, Categories: []string{domain.CategoryMen}},
		{Categories: []string{domain.CategoryWomen}, Brands: []string{"Dior", "Dolce & Gabbana"}, PriceRange: &PriceRange{Min: 0, Max: 100}, MinRating: 3},
		{},
	}
	rng := rand.New(rand.NewSource(7))
	for i, spec := range specs {
		want := ids(Filter(products, spec))
		preds := spec.Predicates()
		for round := 0; round < 20; round++ {
			rng.Shuffle(len(preds), func(a, b int) { preds[a], preds[b] = preds[b], preds[a] })
			if got := ids(Apply(products, preds...)); !sameIDs(got, want) {
				t.Fatalf("spec %d: order changed result %v vs %v", i, got, want)
			}
		}
	}
}

func TestFilterOrWithinDimensionAndAcross(t *testing.T) {
	got := ids(Filter(sampleProducts(), FilterSpec{
		Categories: []string{domain.CategoryMen, domain.CategoryWomen},
		Brands:     []string{"Dior"},
	}))
	if !sameIDs(got, []string{"p2", "p3"}) {
		t.Fatalf("unexpected filter result %v", got)
	}
}

func TestSortKeys(t *testing.T) {
	products := sampleProducts()
	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortFeatured, []string{"p1", "p2", "p3", "p4", "p5"}},
		{SortPriceAsc, []string{"p4", "p5", "p2", "p1", "p3"}},
		{SortPriceDesc, []string{"p3", "p1", "p2", "p5", "p4"}},
		{SortRating, []string{"p3", "p1", "p2", "p5", "p4"}},
		{SortBrand, []string{"p4", "p1", "p2", "p3", "p5"}},
	}
	for _, tt := range tests {
		if got := ids(Sort(products, tt.key)); !sameIDs(got, tt.want) {
			t.Fatalf("sort %q: expected %v, got %v", tt.key, tt.want, got)
		}
	}
	if products[0].ProductID != "p1" {
		t.Fatalf("sort must not reorder its input")
	}
}

func TestParseSortKey(t *testing.T) {
	if ParseSortKey(" Price-Desc ") != SortPriceDesc {
		t.Fatalf("expected price-desc")
	}
	if ParseSortKey("popularity") != SortFeatured {
		t.Fatalf("expected unknown keys to fall back")
	}
}

func TestPaginateClampsPages(t *testing.T) {
	products := sampleProducts()
	items, info := Paginate(products, 2, 2)
	if !sameIDs(ids(items), []string{"p3", "p4"}) || info.TotalPages != 3 || info.Total != 5 {
		t.Fatalf("unexpected page %v %+v", ids(items), info)
	}
	items, info = Paginate(products, 9, 2)
	if info.Page != 3 || !sameIDs(ids(items), []string{"p5"}) {
		t.Fatalf("expected last page, got %v %+v", ids(items), info)
	}
	items, info = Paginate(nil, 1, 12)
	if len(items) != 0 || info.TotalPages != 1 {
		t.Fatalf("unexpected empty page %+v", info)
	}
}

func TestPriceBoundsContainEveryPrice(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := rng.Intn(20)
		products := make([]domain.Product, n)
		for i := range products {
			products[i].RetailPrice = float64(rng.Intn(50000)) / 100
		}
		b := PriceBounds(products)
		for _, p := range products {
			if p.RetailPrice < b.Min || p.RetailPrice > b.Max {
				t.Fatalf("price %v outside bounds %+v", p.RetailPrice, b)
			}
		}
		if n == 0 && (b.Min != 0 || b.Max != 0) {
			t.Fatalf("expected [0,0] for empty list, got %+v", b)
		}
	}
}

func TestFacetsOf(t *testing.T) {
	f := FacetsOf(sampleProducts())
	if !sameIDs(f.Categories, []string{"Men", "Unisex", "Women"}) {
		t.Fatalf("unexpected categories %v", f.Categories)
	}
	if len(f.Brands) != 4 {
		t.Fatalf("unexpected brands %v", f.Brands)
	}
}
