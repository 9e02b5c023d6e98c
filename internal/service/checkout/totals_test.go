package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"colognehub/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func basicCart() []domain.CartLine {
	return []domain.CartLine{
		{ProductID: "a", Price: 10, Quantity: 2, StockQuantity: 5},
		{ProductID: "b", Price: 5, Quantity: 1, StockQuantity: 1},
	}
}

func TestCalculateWithoutPromo(t *testing.T) {
	got := Calculate(basicCart(), nil)
	require.True(t, got.Subtotal.Equal(dec("25")), "subtotal %s", got.Subtotal)
	require.True(t, got.Discount.IsZero())
	require.True(t, got.Shipping.Equal(dec("9.99")), "shipping %s", got.Shipping)
	require.True(t, got.Tax.Equal(dec("2")), "tax %s", got.Tax)
	require.True(t, got.Total.Equal(dec("36.99")), "total %s", got.Total)
	require.Equal(t, 3, got.ItemCount)
}

func TestCalculateWithSave20(t *testing.T) {
	promo, ok := LookupPromo("save20")
	require.True(t, ok)
	got := Calculate(basicCart(), &promo)
	require.True(t, got.Discount.Equal(dec("5")), "discount %s", got.Discount)
	require.True(t, got.Tax.Equal(dec("1.6")), "tax %s", got.Tax)
	require.True(t, got.Total.Equal(dec("31.59")), "total %s", got.Total)
}

func TestCalculateFreeShippingAboveThreshold(t *testing.T) {
	got := Calculate([]domain.CartLine{{Price: 75, Quantity: 2, StockQuantity: 9}}, nil)
	require.True(t, got.Subtotal.Equal(dec("150")))
	require.True(t, got.Shipping.IsZero())

	edge := Calculate([]domain.CartLine{{Price: 100, Quantity: 1, StockQuantity: 9}}, nil)
	require.True(t, edge.Shipping.Equal(dec("9.99")), "exactly 100 still pays shipping")
}

func TestCalculateIgnoresOutOfStockLines(t *testing.T) {
	lines := append(basicCart(), domain.CartLine{ProductID: "gone", Price: 400, Quantity: 3, StockQuantity: 0})
	got := Calculate(lines, nil)
	want := Calculate(basicCart(), nil)
	require.True(t, got.Subtotal.Equal(want.Subtotal))
	require.True(t, got.Tax.Equal(want.Tax))
	require.True(t, got.Total.Equal(want.Total))
	require.Equal(t, want.ItemCount, got.ItemCount)
}

func TestCalculateRoundsToCents(t *testing.T) {
	promo := Promo{Code: "NEWUSER10", Percent: 10}
	got := Calculate([]domain.CartLine{{Price: 19.99, Quantity: 3, StockQuantity: 3}}, &promo)
	require.Equal(t, "59.97", got.Subtotal.StringFixed(2))
	require.Equal(t, "6.00", got.Discount.StringFixed(2))
	require.Equal(t, "4.32", got.Tax.StringFixed(2))
	require.Equal(t, "68.28", got.Total.StringFixed(2))
}

func TestLookupPromo(t *testing.T) {
	p, ok := LookupPromo("  NewUser10 ")
	require.True(t, ok)
	require.Equal(t, Promo{Code: "NEWUSER10", Percent: 10}, p)

	_, ok = LookupPromo("FREE100")
	require.False(t, ok)
}
