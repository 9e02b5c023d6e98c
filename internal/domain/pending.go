package domain

// ActionType tags a deferred shopper intent.
type ActionType string

const (
	ActionAddToCart      ActionType = "ADD_TO_CART"
	ActionToggleWishlist ActionType = "TOGGLE_WISHLIST"
)

// PendingAction is an intent saved across a login detour.
type PendingAction struct {
	Type ActionType             `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// AddToCartData is the payload of ActionAddToCart.
type AddToCartData struct {
	ProductID string `json:"productId" mapstructure:"productId"`
	Quantity  int    `json:"quantity" mapstructure:"quantity"`
}

// ToggleWishlistData is the payload of ActionToggleWishlist.
type ToggleWishlistData struct {
	ProductID string `json:"productId" mapstructure:"productId"`
}
