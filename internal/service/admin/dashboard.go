package admin

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"colognehub/internal/domain"
)

// Dashboard summarises the store for the admin landing page.
type Dashboard struct {
	Products       int                        `json:"products"`
	LowStock       int                        `json:"lowStock"`
	OutOfStock     int                        `json:"outOfStock"`
	Users          int                        `json:"users"`
	Orders         int                        `json:"orders"`
	OrdersByStatus map[domain.OrderStatus]int `json:"ordersByStatus"`
	Revenue        decimal.Decimal            `json:"revenue"`
	InventoryValue decimal.Decimal            `json:"inventoryValue"`
}

// Dashboard loads products, users and orders concurrently. Revenue counts
// every order that was not cancelled; inventory value is at cost price.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		products []domain.Product
		users    []domain.User
		all      []domain.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.api.AdminProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.api.Users(gctx)
		return err
	})
	g.Go(func() (err error) {
		all, err = s.api.AdminOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Products:       len(products),
		Users:          len(users),
		Orders:         len(all),
		OrdersByStatus: make(map[domain.OrderStatus]int),
		Revenue:        decimal.Zero,
		InventoryValue: decimal.Zero,
	}
	for _, p := range products {
		if p.StockQuantity == 0 {
			d.OutOfStock++
		}
		if p.StockQuantity <= s.lowStock {
			d.LowStock++
		}
		d.InventoryValue = d.InventoryValue.Add(decimal.NewFromFloat(p.CostPrice).Mul(decimal.NewFromInt(int64(p.StockQuantity))))
	}
	for _, o := range all {
		d.OrdersByStatus[o.Status]++
		if o.Status != domain.OrderStatusCancelled {
			d.Revenue = d.Revenue.Add(decimal.NewFromFloat(o.Total))
		}
	}
	d.Revenue = d.Revenue.Round(2)
	d.InventoryValue = d.InventoryValue.Round(2)
	return d, nil
}
