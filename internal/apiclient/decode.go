package apiclient

import (
	"bytes"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"

	"colognehub/internal/domain"
)

// decodeList accepts either a bare JSON array or an object wrapping the array
// under one of keys.
func decodeList(raw []byte, out interface{}, keys ...string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}
	var envelope map[string]jsoniter.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	for _, k := range keys {
		if inner, ok := envelope[k]; ok {
			return decodeList(inner, out, keys...)
		}
	}
	return nil
}

// decodeObject accepts a bare object or one wrapped under one of keys.
func decodeObject(raw []byte, out interface{}, keys ...string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var envelope map[string]jsoniter.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		for _, k := range keys {
			if inner, ok := envelope[k]; ok && len(inner) > 0 && inner[0] == '{' {
				return json.Unmarshal(inner, out)
			}
		}
	}
	return json.Unmarshal(trimmed, out)
}

// parseCartLine normalises one cart item. The backend either populates the
// product under productId or nests it under product, and older records carry
// numbers as strings.
func parseCartLine(raw map[string]interface{}) (domain.CartLine, bool) {
	var line domain.CartLine
	product := map[string]interface{}{}

	switch v := raw["productId"].(type) {
	case string:
		line.ProductID = v
	case map[string]interface{}:
		product = v
	}
	if nested, ok := raw["product"].(map[string]interface{}); ok {
		for k, v := range nested {
			product[k] = v
		}
	}
	if line.ProductID == "" {
		line.ProductID = firstString(product, "product_id", "_id", "id")
	}
	if line.ProductID == "" {
		return domain.CartLine{}, false
	}

	line.Quantity = cast.ToInt(raw["quantity"])
	line.Name = firstString(product, "name")
	if line.Name == "" {
		line.Name = firstString(raw, "name", "productName")
	}
	line.Brand = firstString(product, "brand")
	if line.Brand == "" {
		line.Brand = firstString(raw, "brand")
	}
	line.Price = firstFloat(product, "retail_price", "price")
	if line.Price == 0 {
		line.Price = firstFloat(raw, "price", "retail_price")
	}
	line.ImageURL = firstString(product, "image_url", "imageUrl")
	if line.ImageURL == "" {
		line.ImageURL = firstString(raw, "image_url", "imageUrl")
	}
	if v, ok := product["stock_quantity"]; ok {
		line.StockQuantity = cast.ToInt(v)
	} else {
		line.StockQuantity = cast.ToInt(raw["stock_quantity"])
	}
	return line, true
}

func parseProducts(items []map[string]interface{}) []domain.Product {
	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		p := productFromMap(item)
		if p.ProductID == "" {
			continue
		}
		products = append(products, p)
	}
	return products
}

func parseCartLines(items []map[string]interface{}) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		if line, ok := parseCartLine(item); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseWishlistEntry(raw map[string]interface{}) (domain.WishlistEntry, bool) {
	switch v := raw["product_id"].(type) {
	case string:
		return domain.WishlistEntry{ProductID: v}, v != ""
	case map[string]interface{}:
		p := productFromMap(v)
		return domain.WishlistEntry{ProductID: p.ProductID, Product: &p}, p.ProductID != ""
	}
	if nested, ok := raw["productId"].(map[string]interface{}); ok {
		p := productFromMap(nested)
		return domain.WishlistEntry{ProductID: p.ProductID, Product: &p}, p.ProductID != ""
	}
	id := firstString(raw, "productId", "product_id")
	return domain.WishlistEntry{ProductID: id}, id != ""
}

func productFromMap(m map[string]interface{}) domain.Product {
	return domain.Product{
		ProductID:     firstString(m, "product_id", "_id", "id"),
		Name:          firstString(m, "name"),
		Brand:         firstString(m, "brand"),
		Category:      firstString(m, "category"),
		Tags:          cast.ToStringSlice(m["tags"]),
		Rating:        cast.ToFloat64(m["rating"]),
		CostPrice:     cast.ToFloat64(m["cost_price"]),
		RetailPrice:   cast.ToFloat64(m["retail_price"]),
		StockQuantity: cast.ToInt(m["stock_quantity"]),
		ImageURL:      firstString(m, "image_url"),
		Description:   firstString(m, "description"),
	}
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := strings.TrimSpace(cast.ToString(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstFloat(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f := cast.ToFloat64(v); f != 0 {
				return f
			}
		}
	}
	return 0
}
