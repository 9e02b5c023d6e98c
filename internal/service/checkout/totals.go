package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"colognehub/internal/domain"
)

var (
	freeShippingOver = decimal.NewFromInt(100)
	flatShipping     = decimal.RequireFromString("9.99")
	taxRate          = decimal.RequireFromString("0.08")
	hundred          = decimal.NewFromInt(100)
)

// Promo is a percentage discount code.
type Promo struct {
	Code    string `json:"code"`
	Percent int64  `json:"percent"`
}

// promoCodes is checked locally only; the backend remains the authority on
// what an order is charged.
var promoCodes = map[string]int64{
	"SAVE20":    20,
	"NEWUSER10": 10,
}

// LookupPromo finds code, ignoring case and surrounding space.
func LookupPromo(code string) (Promo, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	pct, ok := promoCodes[code]
	if !ok {
		return Promo{}, false
	}
	return Promo{Code: code, Percent: pct}, true
}

// Totals is the checkout summary. Amounts are rounded to cents.
type Totals struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Promo     *Promo          `json:"promo,omitempty"`
}

// Calculate derives totals from the in-stock lines of a cart. Out-of-stock
// lines contribute to nothing, including the item count.
func Calculate(lines []domain.CartLine, promo *Promo) Totals {
	t := Totals{Promo: promo}
	subtotal := decimal.Zero
	for _, l := range lines {
		if !l.InStock() || l.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
		t.ItemCount += l.Quantity
	}
	t.Subtotal = subtotal.Round(2)

	t.Discount = decimal.Zero
	if promo != nil {
		t.Discount = t.Subtotal.Mul(decimal.NewFromInt(promo.Percent)).Div(hundred).Round(2)
	}
	t.Shipping = flatShipping
	if t.Subtotal.GreaterThan(freeShippingOver) {
		t.Shipping = decimal.Zero
	}
	t.Tax = t.Subtotal.Sub(t.Discount).Mul(taxRate).Round(2)
	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Shipping).Add(t.Tax)
	return t
}
