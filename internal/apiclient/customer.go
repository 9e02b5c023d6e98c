package apiclient

import (
	"context"
	"net/http"

	"colognehub/internal/domain"
)

// Products fetches the full catalog.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/api/customer/products"})
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	if err := decodeList(raw, &items, "products", "data"); err != nil {
		return nil, err
	}
	return parseProducts(items), nil
}

// Cart fetches the authoritative cart.
func (c *Client) Cart(ctx context.Context) ([]domain.CartLine, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/api/customer/cart"})
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	if err := decodeList(raw, &items, "cart", "items", "data"); err != nil {
		return nil, err
	}
	return parseCartLines(items), nil
}

type cartItemBody struct {
	ProductID string `json:"productId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// AddToCart adds quantity of a product. Duplicate adds are resolved by the server.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) error {
	return c.call(ctx, request{
		method: http.MethodPost,
		path:   "/api/customer/cart",
		body:   cartItemBody{ProductID: productID, Quantity: quantity},
	}, nil)
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) error {
	return c.call(ctx, request{
		method: http.MethodPut,
		path:   pathID("/api/customer/cart", productID),
		body:   cartItemBody{Quantity: quantity},
	}, nil)
}

// RemoveCartItem deletes a cart line.
func (c *Client) RemoveCartItem(ctx context.Context, productID string) error {
	return c.call(ctx, request{method: http.MethodDelete, path: pathID("/api/customer/cart", productID)}, nil)
}

// Wishlist fetches the shopper's wishlist.
func (c *Client) Wishlist(ctx context.Context) ([]domain.WishlistEntry, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/api/customer/wishlist"})
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	if err := decodeList(raw, &items, "wishlist", "items", "data"); err != nil {
		return nil, err
	}
	entries := make([]domain.WishlistEntry, 0, len(items))
	for _, item := range items {
		if e, ok := parseWishlistEntry(item); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// AddToWishlist saves a product to the wishlist.
func (c *Client) AddToWishlist(ctx context.Context, productID string) error {
	return c.call(ctx, request{
		method: http.MethodPost,
		path:   "/api/customer/wishlist",
		body:   cartItemBody{ProductID: productID},
	}, nil)
}

// RemoveFromWishlist drops a product from the wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	return c.call(ctx, request{method: http.MethodDelete, path: pathID("/api/customer/wishlist", productID)}, nil)
}

// CheckoutRequest is the payload of POST /api/customer/checkout.
type CheckoutRequest struct {
	ShippingAddress domain.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	PromoCode       string         `json:"promoCode,omitempty"`
	Subtotal        float64        `json:"subtotal"`
	Discount        float64        `json:"discount"`
	Shipping        float64        `json:"shipping"`
	Tax             float64        `json:"tax"`
	Total           float64        `json:"total"`
}

// Checkout places an order for the current cart.
func (c *Client) Checkout(ctx context.Context, in CheckoutRequest) (*domain.Order, error) {
	raw, err := c.do(ctx, request{method: http.MethodPost, path: "/api/customer/checkout", body: in})
	if err != nil {
		return nil, err
	}
	var order domain.Order
	if err := decodeObject(raw, &order, "order", "data"); err != nil {
		return nil, err
	}
	return &order, nil
}

// Order fetches one order for tracking.
func (c *Client) Order(ctx context.Context, orderID string) (*domain.Order, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: pathID("/api/customer/order", orderID)})
	if err != nil {
		return nil, err
	}
	var order domain.Order
	if err := decodeObject(raw, &order, "order", "data"); err != nil {
		return nil, err
	}
	return &order, nil
}

// Orders lists the shopper's orders.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/api/customer/orders"})
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	if err := decodeList(raw, &orders, "orders", "data"); err != nil {
		return nil, err
	}
	return orders, nil
}
