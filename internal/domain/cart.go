package domain

// CartLine is one product in the shopper's cart together with the product
// fields needed for display.
type CartLine struct {
	ProductID     string  `json:"productId"`
	Quantity      int     `json:"quantity"`
	Name          string  `json:"name"`
	Brand         string  `json:"brand"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	StockQuantity int     `json:"stockQuantity"`
}

// InStock reports whether the referenced product currently has inventory.
func (l CartLine) InStock() bool {
	return l.StockQuantity > 0
}

// WishlistEntry references a product saved for later.
type WishlistEntry struct {
	ProductID string   `json:"product_id"`
	Product   *Product `json:"product,omitempty"`
}
