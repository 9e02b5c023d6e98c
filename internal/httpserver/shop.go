package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"colognehub/internal/service/catalog"
)

type searchRequest struct {
	Term string `json:"term"`
}

type sortRequest struct {
	Sort string `json:"sort"`
}

type pageRequest struct {
	Page int `json:"page"`
}

func (h *handlers) shopPage(c *gin.Context) {
	view := h.deps.Catalog.View()
	c.JSON(http.StatusOK, gin.H{
		"page":  view.Current(),
		"query": view.Query().Encode(),
	})
}

func (h *handlers) shopRefresh(c *gin.Context) {
	if err := h.deps.Catalog.Refresh(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	h.shopPage(c)
}

// shopHydrate seeds the filter from the browser's initial URL query.
func (h *handlers) shopHydrate(c *gin.Context) {
	h.deps.Catalog.View().Hydrate(c.Request.URL.Query())
	h.shopPage(c)
}

func (h *handlers) shopFilter(c *gin.Context) {
	var req catalog.FilterSpec
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	h.deps.Catalog.View().SetFilter(req)
	h.shopPage(c)
}

func (h *handlers) shopClearFilter(c *gin.Context) {
	h.deps.Catalog.View().ClearFilters()
	h.shopPage(c)
}

func (h *handlers) shopSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	h.deps.Catalog.View().SetSearch(req.Term)
	h.shopPage(c)
}

func (h *handlers) shopSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	h.deps.Catalog.View().SetSort(catalog.ParseSortKey(req.Sort))
	h.shopPage(c)
}

func (h *handlers) shopSetPage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	h.deps.Catalog.View().SetPage(req.Page)
	h.shopPage(c)
}

func (h *handlers) shopQuery(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"query": h.deps.Catalog.View().Query().Encode()})
}

func (h *handlers) productDetail(c *gin.Context) {
	p, err := h.deps.Catalog.Product(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"product": p}
	if h.deps.Wishlist != nil {
		resp["inWishlist"] = h.deps.Wishlist.Contains(p.ProductID)
	}
	c.JSON(http.StatusOK, resp)
}
