package apiclient

import (
	"context"
	"net/http"

	"github.com/guonaihong/gout"

	"colognehub/internal/domain"
)

// AdminProducts lists every product including cost prices.
func (c *Client) AdminProducts(ctx context.Context) ([]domain.Product, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/products"})
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	if err := decodeList(raw, &items, "products", "data"); err != nil {
		return nil, err
	}
	return parseProducts(items), nil
}

// CreateProduct adds a product.
func (c *Client) CreateProduct(ctx context.Context, p domain.Product) error {
	return c.call(ctx, request{method: http.MethodPost, path: "/api/admin/products", body: p}, nil)
}

// UpdateProduct replaces a product's fields.
func (c *Client) UpdateProduct(ctx context.Context, p domain.Product) error {
	return c.call(ctx, request{method: http.MethodPut, path: pathID("/api/admin/products", p.ProductID), body: p}, nil)
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.call(ctx, request{method: http.MethodDelete, path: pathID("/api/admin/products", productID)}, nil)
}

// UpdateStock sets the stock quantity of a product.
func (c *Client) UpdateStock(ctx context.Context, productID string, quantity int) error {
	return c.call(ctx, request{
		method: http.MethodPut,
		path:   pathID("/api/admin/inventory", productID),
		body:   map[string]int{"stock_quantity": quantity},
	}, nil)
}

// Brands lists brands.
func (c *Client) Brands(ctx context.Context) ([]domain.Brand, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/brands"})
	if err != nil {
		return nil, err
	}
	var brands []domain.Brand
	if err := decodeList(raw, &brands, "brands", "data"); err != nil {
		return nil, err
	}
	return brands, nil
}

// CreateBrand adds a brand.
func (c *Client) CreateBrand(ctx context.Context, b domain.Brand) error {
	return c.call(ctx, request{method: http.MethodPost, path: "/api/admin/brands", body: b}, nil)
}

// UpdateBrand replaces a brand's fields.
func (c *Client) UpdateBrand(ctx context.Context, b domain.Brand) error {
	return c.call(ctx, request{method: http.MethodPut, path: pathID("/api/admin/brands", b.ID), body: b}, nil)
}

// DeleteBrand removes a brand.
func (c *Client) DeleteBrand(ctx context.Context, id string) error {
	return c.call(ctx, request{method: http.MethodDelete, path: pathID("/api/admin/brands", id)}, nil)
}

// Users lists every account.
func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/getAllUsers"})
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := decodeList(raw, &users, "users", "data"); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminOrders lists every order.
func (c *Client) AdminOrders(ctx context.Context) ([]domain.Order, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/orders"})
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	if err := decodeList(raw, &orders, "orders", "data"); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus sets an order's status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return c.call(ctx, request{
		method: http.MethodPut,
		path:   pathID("/api/admin/orders", orderID) + "/status",
		body:   map[string]domain.OrderStatus{"status": status},
	}, nil)
}

// Subscribers lists newsletter subscribers.
func (c *Client) Subscribers(ctx context.Context) ([]domain.Subscriber, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/api/admin/subscribers"})
	if err != nil {
		return nil, err
	}
	var subs []domain.Subscriber
	if err := decodeList(raw, &subs, "subscribers", "data"); err != nil {
		return nil, err
	}
	return subs, nil
}

// DeleteSubscriber removes a subscriber.
func (c *Client) DeleteSubscriber(ctx context.Context, id string) error {
	return c.call(ctx, request{method: http.MethodDelete, path: pathID("/api/admin/subscribers", id)}, nil)
}

// BulkUploadProducts sends a spreadsheet to the server-side import endpoint.
func (c *Client) BulkUploadProducts(ctx context.Context, filename string, data []byte) (string, error) {
	var resp messageResponse
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/api/admin/products/bulk-upload",
		form: gout.H{
			"file": gout.FormType{FileName: filename, File: gout.FormMem(data)},
		},
	}, &resp)
	return resp.Message, err
}

// BulkDownloadProducts fetches the server-side spreadsheet export.
func (c *Client) BulkDownloadProducts(ctx context.Context) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: "/api/admin/products/bulk-download"})
}
