// Package importer reads and writes product spreadsheets used by the admin
// bulk upload and pushes parsed products to the backend.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"colognehub/internal/domain"
	"colognehub/internal/logging"
	"colognehub/internal/validation"
)

// Format is a spreadsheet encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf infers the format from a file name.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported spreadsheet %q: expected .csv or .xlsx", filename)
	}
}

// Columns is the header row of a product sheet, in order.
var Columns = []string{
	"product_id", "name", "brand", "category", "tags", "rating",
	"cost_price", "retail_price", "stock_quantity", "image_url", "description",
}

// productRow is one sheet row. Every cell is kept as text and converted
// afterwards so a bad number is reported per row.
type productRow struct {
	ProductID     string `csv:"product_id"`
	Name          string `csv:"name"`
	Brand         string `csv:"brand"`
	Category      string `csv:"category"`
	Tags          string `csv:"tags"`
	Rating        string `csv:"rating"`
	CostPrice     string `csv:"cost_price"`
	RetailPrice   string `csv:"retail_price"`
	StockQuantity string `csv:"stock_quantity"`
	ImageURL      string `csv:"image_url"`
	Description   string `csv:"description"`
}

// RowError ties a problem to a 1-based sheet row (the header is row 1).
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Parse reads products from a sheet. Rows without a product_id but with
// tags continue the previous product. Invalid rows are skipped and reported.
func Parse(r io.Reader, format Format) ([]domain.Product, []RowError, error) {
	var (
		rows []productRow
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, nil, err
	}

	var (
		products []domain.Product
		problems []RowError
		current  = -1
	)
	for i, row := range rows {
		line := i + 2
		if strings.TrimSpace(row.ProductID) == "" {
			// Continuation rows carry extra tags for the product above.
			if current >= 0 && strings.TrimSpace(row.Tags) != "" {
				products[current].Tags = append(products[current].Tags, splitTags(row.Tags)...)
				continue
			}
			if isBlank(row) {
				continue
			}
		}
		p, err := row.product()
		if err != nil {
			problems = append(problems, RowError{Row: line, Err: err})
			current = -1
			continue
		}
		products = append(products, p)
		current = len(products) - 1
	}
	return products, problems, nil
}

func readCSV(r io.Reader) ([]productRow, error) {
	var rows []productRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func (row productRow) product() (domain.Product, error) {
	rating, err := number(row.Rating, "rating")
	if err != nil {
		return domain.Product{}, err
	}
	cost, err := number(row.CostPrice, "cost_price")
	if err != nil {
		return domain.Product{}, err
	}
	retail, err := number(row.RetailPrice, "retail_price")
	if err != nil {
		return domain.Product{}, err
	}
	stock, err := cast.ToIntE(strings.TrimSpace(orZero(row.StockQuantity)))
	if err != nil {
		return domain.Product{}, fmt.Errorf("stock_quantity: %q is not a whole number", row.StockQuantity)
	}
	p := domain.Product{
		ProductID:     strings.TrimSpace(row.ProductID),
		Name:          strings.TrimSpace(row.Name),
		Brand:         strings.TrimSpace(row.Brand),
		Category:      strings.TrimSpace(row.Category),
		Tags:          splitTags(row.Tags),
		Rating:        rating,
		CostPrice:     cost,
		RetailPrice:   retail,
		StockQuantity: stock,
		ImageURL:      strings.TrimSpace(row.ImageURL),
		Description:   strings.TrimSpace(row.Description),
	}
	if err := validation.Struct(p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func number(v, field string) (float64, error) {
	f, err := cast.ToFloat64E(strings.TrimSpace(orZero(v)))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", field, v)
	}
	return f, nil
}

func orZero(v string) string {
	if strings.TrimSpace(v) == "" {
		return "0"
	}
	return v
}

func splitTags(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ';' || r == '|' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isBlank(row productRow) bool {
	return strings.TrimSpace(row.Name+row.Brand+row.Category+row.Tags+row.RetailPrice+row.StockQuantity) == ""
}

func toRow(p domain.Product) productRow {
	return productRow{
		ProductID:     p.ProductID,
		Name:          p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		Tags:          strings.Join(p.Tags, ";"),
		Rating:        cast.ToString(p.Rating),
		CostPrice:     cast.ToString(p.CostPrice),
		RetailPrice:   cast.ToString(p.RetailPrice),
		StockQuantity: cast.ToString(p.StockQuantity),
		ImageURL:      p.ImageURL,
		Description:   p.Description,
	}
}

// WriteCSV writes products as a sheet Parse can read back.
func WriteCSV(w io.Writer, products []domain.Product) error {
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, toRow(p))
	}
	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ProductWriter stores one product on the backend.
type ProductWriter interface {
	UpsertProduct(ctx context.Context, p domain.Product) error
}

// Result summarises an import run.
type Result struct {
	Imported int        `json:"imported"`
	Failed   []RowError `json:"-"`
}

// Importer pushes parsed products through a ProductWriter with bounded
// concurrency. A failed product does not stop the others.
type Importer struct {
	writer      ProductWriter
	concurrency int
	logger      *zap.Logger
}

func New(writer ProductWriter, concurrency int, logger *zap.Logger) *Importer {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Importer{writer: writer, concurrency: concurrency, logger: logging.OrNop(logger)}
}

// Run upserts products. Failures are indexed by the product's position,
// counted from 1.
func (i *Importer) Run(ctx context.Context, products []domain.Product) (Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)

	var (
		mu  sync.Mutex
		res Result
	)
	for idx, p := range products {
		idx, p := idx, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := i.writer.UpsertProduct(gctx, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				i.logger.Warn("product import failed", zap.String("productId", p.ProductID), zap.Error(err))
				res.Failed = append(res.Failed, RowError{Row: idx + 1, Err: fmt.Errorf("%s: %w", p.ProductID, err)})
				return nil
			}
			res.Imported++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	sort.Slice(res.Failed, func(a, b int) bool { return res.Failed[a].Row < res.Failed[b].Row })
	return res, nil
}
