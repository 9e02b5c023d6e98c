package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"colognehub/internal/apiclient"
	"colognehub/internal/domain"
	"colognehub/internal/importer"
	"colognehub/internal/logging"
	"colognehub/internal/validation"
)

// DefaultLowStock is the stock level at or below which a product is flagged.
const DefaultLowStock = 5

var ErrNegativeStock = fmt.Errorf("%w: stock quantity cannot be negative", domain.ErrValidation)

type adminAPI interface {
	AdminProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) error
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, productID string) error
	UpdateStock(ctx context.Context, productID string, quantity int) error

	Brands(ctx context.Context) ([]domain.Brand, error)
	CreateBrand(ctx context.Context, b domain.Brand) error
	UpdateBrand(ctx context.Context, b domain.Brand) error
	DeleteBrand(ctx context.Context, id string) error

	Users(ctx context.Context) ([]domain.User, error)
	AdminOrders(ctx context.Context) ([]domain.Order, error)

	Subscribers(ctx context.Context) ([]domain.Subscriber, error)
	DeleteSubscriber(ctx context.Context, id string) error

	BulkUploadProducts(ctx context.Context, filename string, data []byte) (string, error)
	BulkDownloadProducts(ctx context.Context) ([]byte, error)
}

// Service backs the admin console screens.
type Service struct {
	api      adminAPI
	lowStock int
	logger   *zap.Logger
}

func New(api adminAPI, lowStock int, logger *zap.Logger) *Service {
	if lowStock <= 0 {
		lowStock = DefaultLowStock
	}
	return &Service{api: api, lowStock: lowStock, logger: logging.OrNop(logger)}
}

// Products lists products sorted by name.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	products, err := s.api.AdminProducts(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool { return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name) })
	return products, nil
}

func normalizeProduct(p domain.Product) domain.Product {
	p.ProductID = strings.TrimSpace(p.ProductID)
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Category = strings.TrimSpace(p.Category)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	return p
}

// CreateProduct validates and adds p.
func (s *Service) CreateProduct(ctx context.Context, p domain.Product) error {
	p = normalizeProduct(p)
	if err := validation.Struct(p); err != nil {
		return err
	}
	if err := s.api.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.logger.Info("product created", zap.String("productId", p.ProductID))
	return nil
}

// UpdateProduct validates and replaces p.
func (s *Service) UpdateProduct(ctx context.Context, p domain.Product) error {
	p = normalizeProduct(p)
	if err := validation.Struct(p); err != nil {
		return err
	}
	return s.api.UpdateProduct(ctx, p)
}

// UpsertProduct updates p, creating it when the backend does not know it.
func (s *Service) UpsertProduct(ctx context.Context, p domain.Product) error {
	err := s.UpdateProduct(ctx, p)
	if apiclient.IsNotFound(err) {
		return s.CreateProduct(ctx, p)
	}
	return err
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("%w: product id required", domain.ErrValidation)
	}
	return s.api.DeleteProduct(ctx, productID)
}

// InventoryItem is one row of the inventory screen.
type InventoryItem struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Brand         string `json:"brand"`
	StockQuantity int    `json:"stock_quantity"`
	LowStock      bool   `json:"lowStock"`
	OutOfStock    bool   `json:"outOfStock"`
}

// Inventory lists stock levels, lowest first. With lowOnly only products at
// or below the low-stock threshold are returned.
func (s *Service) Inventory(ctx context.Context, lowOnly bool) ([]InventoryItem, error) {
	products, err := s.api.AdminProducts(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]InventoryItem, 0, len(products))
	for _, p := range products {
		item := InventoryItem{
			ProductID:     p.ProductID,
			Name:          p.Name,
			Brand:         p.Brand,
			StockQuantity: p.StockQuantity,
			LowStock:      p.StockQuantity <= s.lowStock,
			OutOfStock:    p.StockQuantity == 0,
		}
		if lowOnly && !item.LowStock {
			continue
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].StockQuantity < items[j].StockQuantity })
	return items, nil
}

// AdjustStock sets a product's stock quantity.
func (s *Service) AdjustStock(ctx context.Context, productID string, quantity int) error {
	if quantity < 0 {
		return ErrNegativeStock
	}
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id required", domain.ErrValidation)
	}
	if err := s.api.UpdateStock(ctx, productID, quantity); err != nil {
		return err
	}
	s.logger.Info("stock adjusted", zap.String("productId", productID), zap.Int("quantity", quantity))
	return nil
}

// Brands lists brands sorted by name.
func (s *Service) Brands(ctx context.Context) ([]domain.Brand, error) {
	brands, err := s.api.Brands(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(brands, func(i, j int) bool { return strings.ToLower(brands[i].Name) < strings.ToLower(brands[j].Name) })
	return brands, nil
}

// SaveBrand creates b when it has no ID and updates it otherwise.
func (s *Service) SaveBrand(ctx context.Context, b domain.Brand) error {
	b.Name = strings.TrimSpace(b.Name)
	if err := validation.Struct(b); err != nil {
		return err
	}
	if b.ID == "" {
		return s.api.CreateBrand(ctx, b)
	}
	return s.api.UpdateBrand(ctx, b)
}

// DeleteBrand removes a brand.
func (s *Service) DeleteBrand(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: brand id required", domain.ErrValidation)
	}
	return s.api.DeleteBrand(ctx, id)
}

// Users lists accounts, optionally only those with role.
func (s *Service) Users(ctx context.Context, role string) ([]domain.User, error) {
	users, err := s.api.Users(ctx)
	if err != nil {
		return nil, err
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return users, nil
	}
	out := users[:0]
	for _, u := range users {
		if strings.ToLower(u.Role) == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// Subscribers lists newsletter subscribers, newest first.
func (s *Service) Subscribers(ctx context.Context) ([]domain.Subscriber, error) {
	subs, err := s.api.Subscribers(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].CreatedAt.After(subs[j].CreatedAt) })
	return subs, nil
}

// DeleteSubscriber removes a subscriber.
func (s *Service) DeleteSubscriber(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: subscriber id required", domain.ErrValidation)
	}
	return s.api.DeleteSubscriber(ctx, id)
}

// ExportSubscribers writes the subscriber list as CSV.
func (s *Service) ExportSubscribers(ctx context.Context, w io.Writer) (int, error) {
	subs, err := s.Subscribers(ctx)
	if err != nil {
		return 0, err
	}
	if err := gocsv.Marshal(&subs, w); err != nil {
		return 0, fmt.Errorf("export subscribers: %w", err)
	}
	return len(subs), nil
}

// UploadResult reports a bulk upload.
type UploadResult struct {
	Message  string   `json:"message"`
	Rows     int      `json:"rows"`
	Problems []string `json:"problems,omitempty"`
}

// BulkUpload checks a product sheet locally and forwards it to the backend
// import endpoint. Sheets with invalid rows are rejected before upload.
func (s *Service) BulkUpload(ctx context.Context, filename string, data []byte) (UploadResult, error) {
	format, err := importer.FormatOf(filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	products, problems, err := importer.Parse(bytes.NewReader(data), format)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	res := UploadResult{Rows: len(products)}
	for _, p := range problems {
		res.Problems = append(res.Problems, p.Error())
	}
	if len(problems) > 0 {
		return res, fmt.Errorf("%w: %d invalid rows", domain.ErrValidation, len(problems))
	}
	if len(products) == 0 {
		return res, fmt.Errorf("%w: sheet has no products", domain.ErrValidation)
	}
	msg, err := s.api.BulkUploadProducts(ctx, filename, data)
	if err != nil {
		return res, err
	}
	res.Message = msg
	s.logger.Info("bulk upload accepted", zap.String("file", filename), zap.Int("rows", res.Rows))
	return res, nil
}

// BulkDownload returns the backend's product export.
func (s *Service) BulkDownload(ctx context.Context) ([]byte, error) {
	data, err := s.api.BulkDownloadProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty export")
	}
	return data, nil
}

// ExportProducts writes the current product list in format.
func (s *Service) ExportProducts(ctx context.Context, w io.Writer, format importer.Format) (int, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return 0, err
	}
	switch format {
	case importer.FormatXLSX:
		err = importer.WriteXLSX(w, products)
	case importer.FormatCSV:
		err = importer.WriteCSV(w, products)
	default:
		err = fmt.Errorf("%w: unsupported export format %q", domain.ErrValidation, format)
	}
	if err != nil {
		return 0, err
	}
	return len(products), nil
}
