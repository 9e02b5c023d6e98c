package importer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"colognehub/internal/domain"
)

type stubWriter struct {
	mu    sync.Mutex
	items []domain.Product
	fail  map[string]error
}

func (s *stubWriter) UpsertProduct(_ context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[p.ProductID]; err != nil {
		return err
	}
	s.items = append(s.items, p)
	return nil
}

func TestParseCSV(t *testing.T) {
	csvData := `product_id,name,brand,category,tags,rating,cost_price,retail_price,stock_quantity,image_url,description
p-1,Sauvage,Dior,Men,spicy;fresh,4.5,60,110,12,https://example.com/sauvage.jpg,Bold
,,,,amber,,,,,,
p-2,J'adore,Dior,Women,,5,70,150,0,,
p-3,Broken,Dior,Women,,five,1,2,3,,
,,,,,,,,,,
p-4,No Brand,,Unisex,,4,1,2,3,,`

	products, problems, err := Parse(strings.NewReader(csvData), FormatCSV)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d: %+v", len(products), products)
	}
	first := products[0]
	if first.ProductID != "p-1" || first.RetailPrice != 110 || first.StockQuantity != 12 || first.Rating != 4.5 {
		t.Fatalf("unexpected product %+v", first)
	}
	if len(first.Tags) != 3 || first.Tags[2] != "amber" {
		t.Fatalf("expected continuation tag, got %v", first.Tags)
	}
	if products[1].StockQuantity != 0 || products[1].InStock() {
		t.Fatalf("expected out of stock product, got %+v", products[1])
	}
	if len(problems) != 2 || problems[0].Row != 5 || problems[1].Row != 7 {
		t.Fatalf("unexpected problems %+v", problems)
	}
	if !strings.Contains(problems[0].Error(), "rating") {
		t.Fatalf("expected rating problem, got %v", problems[0])
	}
	if !errors.Is(problems[1], domain.ErrValidation) {
		t.Fatalf("expected validation problem, got %v", problems[1])
	}
}

func TestWriteAndParseRoundTripXLSX(t *testing.T) {
	in := []domain.Product{
		{ProductID: "p-1", Name: "Sauvage", Brand: "Dior", Category: "Men", Tags: []string{"spicy", "fresh"}, Rating: 4.5, CostPrice: 60, RetailPrice: 110, StockQuantity: 12},
		{ProductID: "p-2", Name: "CK One", Brand: "Calvin Klein", Category: "Unisex", Rating: 3.5, RetailPrice: 45.99, StockQuantity: 3},
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, problems, err := Parse(&buf, FormatXLSX)
	if err != nil || len(problems) != 0 {
		t.Fatalf("parse: %v %+v", err, problems)
	}
	if len(out) != 2 || out[1].RetailPrice != 45.99 || len(out[0].Tags) != 2 || out[0].StockQuantity != 12 {
		t.Fatalf("unexpected products %+v", out)
	}
}

func TestWriteCSVIsReadable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []domain.Product{{ProductID: "p-1", Name: "Aventus", Brand: "Creed", Category: "Men", RetailPrice: 320, StockQuantity: 2}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), strings.Join(Columns, ",")) {
		t.Fatalf("unexpected header %q", buf.String())
	}
	out, _, err := Parse(&buf, FormatCSV)
	if err != nil || len(out) != 1 || out[0].RetailPrice != 320 {
		t.Fatalf("unexpected parse %v %+v", err, out)
	}
}

func TestFormatOf(t *testing.T) {
	if f, err := FormatOf("Products.XLSX"); err != nil || f != FormatXLSX {
		t.Fatalf("unexpected format %v %v", f, err)
	}
	if _, err := FormatOf("products.json"); err == nil {
		t.Fatalf("expected unsupported format")
	}
}

func TestImporterRunContinuesPastFailures(t *testing.T) {
	w := &stubWriter{fail: map[string]error{"p-2": errors.New("duplicate")}}
	imp := New(w, 2, nil)
	products := []domain.Product{{ProductID: "p-1"}, {ProductID: "p-2"}, {ProductID: "p-3"}}

	res, err := imp.Run(context.Background(), products)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Imported != 2 || len(res.Failed) != 1 || res.Failed[0].Row != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(w.items) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(w.items))
	}
}

func TestCellName(t *testing.T) {
	cases := map[[2]int]string{{0, 1}: "A1", {10, 2}: "K2", {25, 3}: "Z3", {26, 4}: "AA4", {27, 5}: "AB5"}
	for in, want := range cases {
		if got := cellName(in[0], in[1]); got != want {
			t.Fatalf("cellName(%d,%d) = %s, want %s", in[0], in[1], got, want)
		}
	}
}
