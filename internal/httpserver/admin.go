package httpserver

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"colognehub/internal/domain"
	"colognehub/internal/importer"
	"colognehub/internal/service/order"
)

const maxUploadBytes = 10 << 20

type stockRequest struct {
	StockQuantity *int `json:"stock_quantity"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *handlers) adminDashboard(c *gin.Context) {
	d, err := h.deps.Admin.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handlers) adminProducts(c *gin.Context) {
	products, err := h.deps.Admin.Products(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *handlers) adminCreateProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if err := h.deps.Admin.CreateProduct(c.Request.Context(), p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": p})
}

func (h *handlers) adminUpdateProduct(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid json")
		return
	}
	p.ProductID = id
	if err := h.deps.Admin.UpdateProduct(c.Request.Context(), p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

func (h *handlers) adminDeleteProduct(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	if err := h.deps.Admin.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) adminBulkUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, messageResponse{Message: "file too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "unreadable upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		badRequest(c, "unreadable upload")
		return
	}

	res, err := h.deps.Admin.BulkUpload(c.Request.Context(), fh.Filename, data)
	if err != nil {
		status, body := errorResponse(err)
		if len(res.Problems) > 0 {
			body["problems"] = res.Problems
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) adminBulkDownload(c *gin.Context) {
	data, err := h.deps.Admin.BulkDownload(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	attachment(c, "products.xlsx")
	c.Data(http.StatusOK, xlsxContentType, data)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *handlers) adminExportProducts(c *gin.Context) {
	format := importer.Format(strings.ToLower(c.DefaultQuery("format", string(importer.FormatXLSX))))
	contentType := xlsxContentType
	if format == importer.FormatCSV {
		contentType = "text/csv"
	}
	var buf bytes.Buffer
	if _, err := h.deps.Admin.ExportProducts(c.Request.Context(), &buf, format); err != nil {
		writeError(c, err)
		return
	}
	attachment(c, "products-"+time.Now().UTC().Format("20060102")+"."+string(format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *handlers) adminInventory(c *gin.Context) {
	lowOnly, _ := strconv.ParseBool(c.Query("low"))
	items, err := h.deps.Admin.Inventory(c.Request.Context(), lowOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *handlers) adminAdjustStock(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StockQuantity == nil {
		badRequest(c, "stock_quantity is required")
		return
	}
	if err := h.deps.Admin.AdjustStock(c.Request.Context(), id, *req.StockQuantity); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": id, "stock_quantity": *req.StockQuantity})
}

func (h *handlers) adminBrands(c *gin.Context) {
	brands, err := h.deps.Admin.Brands(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// adminSaveBrand serves both create (POST) and update (PUT /:id).
func (h *handlers) adminSaveBrand(c *gin.Context) {
	var b domain.Brand
	if err := c.ShouldBindJSON(&b); err != nil {
		badRequest(c, "invalid json")
		return
	}
	b.ID = c.Param("id")
	if err := h.deps.Admin.SaveBrand(c.Request.Context(), b); err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if b.ID == "" {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"brand": b})
}

func (h *handlers) adminDeleteBrand(c *gin.Context) {
	if err := h.deps.Admin.DeleteBrand(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) adminUsers(c *gin.Context) {
	users, err := h.deps.Admin.Users(c.Request.Context(), c.Query("role"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *handlers) adminOrders(c *gin.Context) {
	var status domain.OrderStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := order.ParseStatus(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		status = parsed
	}
	orders, err := h.deps.Orders.ListAll(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) adminUpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	o, err := h.deps.Orders.UpdateStatus(c.Request.Context(), c.Param("orderId"), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o})
}

func (h *handlers) adminSubscribers(c *gin.Context) {
	subs, err := h.deps.Admin.Subscribers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subs})
}

func (h *handlers) adminDeleteSubscriber(c *gin.Context) {
	if err := h.deps.Admin.DeleteSubscriber(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) adminExportSubscribers(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.deps.Admin.ExportSubscribers(c.Request.Context(), &buf); err != nil {
		writeError(c, err)
		return
	}
	attachment(c, "subscribers.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}
