package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"colognehub/internal/domain"
)

type stubAPI struct {
	orders      []domain.Order
	listCalls   int
	updates     []string
	updateErr   error
	customerErr error
}

func (s *stubAPI) Order(_ context.Context, id string) (*domain.Order, error) {
	if s.customerErr != nil {
		return nil, s.customerErr
	}
	for _, o := range s.orders {
		if o.OrderID == id {
			o := o
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubAPI) Orders(context.Context) ([]domain.Order, error) {
	return append([]domain.Order(nil), s.orders...), nil
}

func (s *stubAPI) AdminOrders(context.Context) ([]domain.Order, error) {
	s.listCalls++
	return append([]domain.Order(nil), s.orders...), nil
}

func (s *stubAPI) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, id+":"+string(status))
	return nil
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from, to domain.OrderStatus
		ok       bool
	}{
		{domain.OrderStatusPending, domain.OrderStatusConfirmed, true},
		{domain.OrderStatusConfirmed, domain.OrderStatusProcessing, true},
		{domain.OrderStatusProcessing, domain.OrderStatusShipped, true},
		{domain.OrderStatusShipped, domain.OrderStatusDelivered, true},
		{domain.OrderStatusShipped, domain.OrderStatusCancelled, true},
		{domain.OrderStatusPending, domain.OrderStatusShipped, false},
		{domain.OrderStatusDelivered, domain.OrderStatusCancelled, false},
		{domain.OrderStatusCancelled, domain.OrderStatusPending, false},
		{domain.OrderStatusConfirmed, domain.OrderStatusConfirmed, false},
		{domain.OrderStatusShipped, domain.OrderStatusProcessing, false},
	}
	for _, tt := range tests {
		err := CheckTransition(tt.from, tt.to)
		if tt.ok && err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", tt.from, tt.to, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s -> %s: expected invalid transition, got %v", tt.from, tt.to, err)
		}
	}
	if err := CheckTransition(domain.OrderStatusPending, "lost"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected unknown status, got %v", err)
	}
}

func TestTerminalAndParse(t *testing.T) {
	if !Terminal(domain.OrderStatusDelivered) || !Terminal(domain.OrderStatusCancelled) || Terminal(domain.OrderStatusShipped) {
		t.Fatalf("unexpected terminal states")
	}
	st, err := ParseStatus(" Shipped ")
	if err != nil || st != domain.OrderStatusShipped {
		t.Fatalf("unexpected parse %v %v", st, err)
	}
	if _, err := ParseStatus("returned"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected unknown status, got %v", err)
	}
}

func TestTimeline(t *testing.T) {
	steps := Timeline(domain.OrderStatusProcessing)
	if !steps[2].Current || !steps[1].Reached || steps[3].Reached {
		t.Fatalf("unexpected timeline %+v", steps)
	}
	cancelled := Timeline(domain.OrderStatusCancelled)
	if !cancelled[0].Reached || cancelled[1].Reached {
		t.Fatalf("unexpected cancelled timeline %+v", cancelled)
	}
}

func TestUpdateStatusGuardsBeforeNetwork(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{{OrderID: "o1", Status: domain.OrderStatusDelivered}}}
	svc := New(api, api, nil)

	_, err := svc.UpdateStatus(context.Background(), "o1", domain.OrderStatusCancelled)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if len(api.updates) != 0 {
		t.Fatalf("expected no status request")
	}
}

func TestUpdateStatusAdvancesCachedState(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{{OrderID: "o1", Status: domain.OrderStatusPending}}}
	svc := New(api, api, nil)
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, "o1", domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got, err := svc.UpdateStatus(ctx, "o1", domain.OrderStatusProcessing)
	if err != nil || got.Status != domain.OrderStatusProcessing {
		t.Fatalf("process: %v %+v", err, got)
	}
	if api.listCalls != 1 {
		t.Fatalf("expected one list fetch, got %d", api.listCalls)
	}
	if len(api.updates) != 2 || api.updates[1] != "o1:processing" {
		t.Fatalf("unexpected updates %v", api.updates)
	}
	if _, err := svc.UpdateStatus(ctx, "missing", domain.OrderStatusConfirmed); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusFailureRefetches(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{{OrderID: "o1", Status: domain.OrderStatusPending}}, updateErr: errors.New("down")}
	svc := New(api, api, nil)
	if _, err := svc.UpdateStatus(context.Background(), "o1", domain.OrderStatusConfirmed); err == nil {
		t.Fatalf("expected error")
	}
	api.updateErr = nil
	if _, err := svc.UpdateStatus(context.Background(), "o1", domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("expected retry from pending to succeed, got %v", err)
	}
	if api.listCalls != 2 {
		t.Fatalf("expected a refetch after the rejected update, got %d list calls", api.listCalls)
	}
}

func TestUpdateStatusRefreshesStaleCache(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{{OrderID: "o1", Status: domain.OrderStatusPending}}}
	svc := New(api, api, nil)
	ctx := context.Background()
	if _, err := svc.ListAll(ctx, ""); err != nil {
		t.Fatalf("list: %v", err)
	}

	// Another admin confirmed the order on the server.
	api.orders[0].Status = domain.OrderStatusConfirmed
	got, err := svc.UpdateStatus(ctx, "o1", domain.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("expected refreshed status to allow processing, got %v", err)
	}
	if got.Status != domain.OrderStatusProcessing || api.listCalls != 2 {
		t.Fatalf("unexpected result %+v after %d list calls", got, api.listCalls)
	}

	// Still invalid after the refresh.
	api.orders[0].Status = domain.OrderStatusDelivered
	if _, err := svc.UpdateStatus(ctx, "o1", domain.OrderStatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if len(api.updates) != 1 {
		t.Fatalf("expected one status request, got %v", api.updates)
	}
}

func TestStatusesAreNormalised(t *testing.T) {
	api := &stubAPI{orders: []domain.Order{
		{OrderID: "o1", Status: "Pending"},
		{OrderID: "o2", Status: " SHIPPED "},
	}}
	svc := New(api, api, nil)
	ctx := context.Background()

	shipped, err := svc.ListAll(ctx, "Shipped")
	if err != nil || len(shipped) != 1 || shipped[0].OrderID != "o2" {
		t.Fatalf("unexpected filtered list %v %+v", err, shipped)
	}
	if _, err := svc.ListAll(ctx, "lost"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected unknown status filter error, got %v", err)
	}

	got, err := svc.UpdateStatus(ctx, "o1", " Confirmed")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != domain.OrderStatusConfirmed || api.updates[0] != "o1:confirmed" {
		t.Fatalf("unexpected update %+v %v", got, api.updates)
	}

	tr, err := svc.Track(ctx, "o2")
	if err != nil || tr.Order.Status != domain.OrderStatusShipped || tr.Terminal {
		t.Fatalf("unexpected tracking %+v %v", tr, err)
	}
}

func TestListNewestFirstAndTrack(t *testing.T) {
	now := time.Now()
	api := &stubAPI{orders: []domain.Order{
		{OrderID: "old", Status: domain.OrderStatusDelivered, CreatedAt: now.Add(-time.Hour)},
		{OrderID: "new", Status: domain.OrderStatusShipped, CreatedAt: now},
	}}
	svc := New(api, api, nil)

	orders, err := svc.List(context.Background())
	if err != nil || orders[0].OrderID != "new" {
		t.Fatalf("unexpected list %v %+v", err, orders)
	}
	shipped, err := svc.ListAll(context.Background(), domain.OrderStatusShipped)
	if err != nil || len(shipped) != 1 || shipped[0].OrderID != "new" {
		t.Fatalf("unexpected filtered list %+v", shipped)
	}

	tr, err := svc.Track(context.Background(), "old")
	if err != nil || !tr.Terminal || tr.Order.OrderID != "old" || !tr.Timeline[4].Current {
		t.Fatalf("unexpected tracking %+v %v", tr, err)
	}
	if _, err := svc.Track(context.Background(), " "); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
