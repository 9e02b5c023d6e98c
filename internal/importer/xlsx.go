package importer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"

	"colognehub/internal/domain"
)

// SheetName is the sheet written by WriteXLSX.
const SheetName = "Sheet1"

func readXLSX(r io.Reader) ([]productRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	sheets := f.GetSheetMap()
	if len(sheets) == 0 {
		return nil, nil
	}
	ids := make([]int, 0, len(sheets))
	for id := range sheets {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	records := f.GetRows(sheets[ids[0]])
	if len(records) == 0 {
		return nil, nil
	}
	index := headerIndex(records[0])
	rows := make([]productRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, productRow{
			ProductID:     pick(rec, index, "product_id"),
			Name:          pick(rec, index, "name"),
			Brand:         pick(rec, index, "brand"),
			Category:      pick(rec, index, "category"),
			Tags:          pick(rec, index, "tags"),
			Rating:        pick(rec, index, "rating"),
			CostPrice:     pick(rec, index, "cost_price"),
			RetailPrice:   pick(rec, index, "retail_price"),
			StockQuantity: pick(rec, index, "stock_quantity"),
			ImageURL:      pick(rec, index, "image_url"),
			Description:   pick(rec, index, "description"),
		})
	}
	return rows, nil
}

// WriteXLSX writes products to a single-sheet workbook Parse can read back.
func WriteXLSX(w io.Writer, products []domain.Product) error {
	f := excelize.NewFile()
	for col, name := range Columns {
		f.SetCellValue(SheetName, cellName(col, 1), name)
	}
	for i, p := range products {
		row := i + 2
		values := []interface{}{
			p.ProductID, p.Name, p.Brand, p.Category, strings.Join(p.Tags, ";"), p.Rating,
			p.CostPrice, p.RetailPrice, p.StockQuantity, p.ImageURL, p.Description,
		}
		for col, v := range values {
			f.SetCellValue(SheetName, cellName(col, row), v)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// cellName turns a 0-based column and 1-based row into an A1 reference.
func cellName(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return fmt.Sprintf("%s%d", name, row)
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
