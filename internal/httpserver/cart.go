package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"colognehub/internal/service/checkout"
)

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type promoRequest struct {
	Code string `json:"code"`
}

func (h *handlers) cart(c *gin.Context) {
	lines, err := h.deps.Cart.Load(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lines, "count": h.deps.Cart.Count()})
}

func (h *handlers) cartCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.deps.Cart.Count()})
}

func (h *handlers) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.ProductID == "" {
		badRequest(c, "productId is required")
		return
	}
	ran, err := h.deps.Cart.Add(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ran {
		gated(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": h.deps.Cart.Lines(), "count": h.deps.Cart.Count()})
}

func (h *handlers) updateCartLine(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if err := h.deps.Cart.UpdateQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": h.deps.Cart.Lines(), "count": h.deps.Cart.Count()})
}

func (h *handlers) removeCartLine(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	if err := h.deps.Cart.Remove(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": h.deps.Cart.Lines(), "count": h.deps.Cart.Count()})
}

func (h *handlers) wishlist(c *gin.Context) {
	entries, err := h.deps.Wishlist.Load(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h *handlers) toggleWishlist(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	ran, err := h.deps.Wishlist.Toggle(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ran {
		gated(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": id, "inWishlist": h.deps.Wishlist.Contains(id)})
}

func (h *handlers) moveToCart(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	if err := h.deps.Wishlist.MoveToCart(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": id, "inWishlist": h.deps.Wishlist.Contains(id)})
}

func (h *handlers) checkoutSummary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":  h.deps.Cart.Lines(),
		"totals": h.deps.Checkout.Totals(),
		"promo":  h.deps.Checkout.Promo(),
	})
}

func (h *handlers) applyPromo(c *gin.Context) {
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if _, err := h.deps.Checkout.ApplyPromo(req.Code); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": h.deps.Checkout.Promo().Error,
			"totals":  h.deps.Checkout.Totals(),
			"promo":   h.deps.Checkout.Promo(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"totals": h.deps.Checkout.Totals(), "promo": h.deps.Checkout.Promo()})
}

func (h *handlers) removePromo(c *gin.Context) {
	h.deps.Checkout.RemovePromo()
	c.JSON(http.StatusOK, gin.H{"totals": h.deps.Checkout.Totals(), "promo": h.deps.Checkout.Promo()})
}

func (h *handlers) placeOrder(c *gin.Context) {
	var req checkout.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	placed, err := h.deps.Checkout.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": placed})
}
