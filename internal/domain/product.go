package domain

// Category values used by the storefront filters. The backend may return
// others; they are filtered like any other string.
const (
	CategoryMen    = "Men"
	CategoryWomen  = "Women"
	CategoryUnisex = "Unisex"
)

// Categories lists the known categories in display order.
var Categories = []string{CategoryMen, CategoryWomen, CategoryUnisex}

// Product mirrors the catalog entry returned by the backend.
type Product struct {
	ProductID     string   `json:"product_id" validate:"required,max=64"`
	Name          string   `json:"name" validate:"required,max=200"`
	Brand         string   `json:"brand" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	Tags          []string `json:"tags,omitempty"`
	Rating        float64  `json:"rating" validate:"gte=0,lte=5"`
	CostPrice     float64  `json:"cost_price" validate:"gte=0"`
	RetailPrice   float64  `json:"retail_price" validate:"gte=0"`
	StockQuantity int      `json:"stock_quantity" validate:"gte=0"`
	ImageURL      string   `json:"image_url,omitempty" validate:"omitempty,url"`
	Description   string   `json:"description,omitempty"`
}

// InStock reports whether the product can be purchased.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}
