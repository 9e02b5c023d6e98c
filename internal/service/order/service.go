package order

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"colognehub/internal/domain"
	"colognehub/internal/logging"
)

type customerAPI interface {
	Order(ctx context.Context, orderID string) (*domain.Order, error)
	Orders(ctx context.Context) ([]domain.Order, error)
}

type adminAPI interface {
	AdminOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// Tracking is an order plus its progress timeline.
type Tracking struct {
	Order    domain.Order `json:"order"`
	Timeline []Step       `json:"timeline"`
	Terminal bool         `json:"terminal"`
}

type Service struct {
	customer customerAPI
	admin    adminAPI
	logger   *zap.Logger

	mu     sync.Mutex
	orders map[string]domain.Order
}

// New builds a Service; admin may be nil for customer-only use.
func New(customer customerAPI, admin adminAPI, logger *zap.Logger) *Service {
	return &Service{customer: customer, admin: admin, logger: logging.OrNop(logger), orders: make(map[string]domain.Order)}
}

// Track fetches one of the shopper's orders.
func (s *Service) Track(ctx context.Context, orderID string) (Tracking, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Tracking{}, domain.ErrNotFound
	}
	o, err := s.customer.Order(ctx, orderID)
	if err != nil {
		return Tracking{}, err
	}
	o.Status = normalize(o.Status)
	return Tracking{Order: *o, Timeline: Timeline(o.Status), Terminal: Terminal(o.Status)}, nil
}

// List returns the shopper's orders, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.customer.Orders(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	return orders, nil
}

// ListAll returns every order for the admin console and caches their status.
// status filters when non-empty and is matched case-insensitively.
func (s *Service) ListAll(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" {
		parsed, err := ParseStatus(string(status))
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	orders, err := s.admin.AdminOrders(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for i := range orders {
		orders[i].Status = normalize(orders[i].Status)
		s.orders[orders[i].OrderID] = orders[i]
	}
	s.mu.Unlock()
	sortNewestFirst(orders)
	if status == "" {
		return orders, nil
	}
	out := orders[:0]
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

// UpdateStatus moves an order to status after checking the transition
// against the order's last known status. A cached status that blocks the
// move, or a rejected update, is refreshed from the server.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	to, err := ParseStatus(string(status))
	if err != nil {
		return domain.Order{}, err
	}
	current, cached, err := s.lookup(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := CheckTransition(current.Status, to); err != nil {
		if !cached {
			return domain.Order{}, err
		}
		if current, err = s.refetch(ctx, orderID); err != nil {
			return domain.Order{}, err
		}
		if err := CheckTransition(current.Status, to); err != nil {
			return domain.Order{}, err
		}
	}
	if err := s.admin.UpdateOrderStatus(ctx, orderID, to); err != nil {
		s.forget(orderID)
		return domain.Order{}, err
	}
	s.logger.Info("order status updated",
		zap.String("orderId", orderID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)),
	)
	current.Status = to
	s.mu.Lock()
	s.orders[orderID] = current
	s.mu.Unlock()
	return current, nil
}

// lookup returns the order and whether it came from the cache.
func (s *Service) lookup(ctx context.Context, orderID string) (domain.Order, bool, error) {
	s.mu.Lock()
	o, ok := s.orders[orderID]
	s.mu.Unlock()
	if ok {
		return o, true, nil
	}
	o, err := s.refetch(ctx, orderID)
	return o, false, err
}

func (s *Service) refetch(ctx context.Context, orderID string) (domain.Order, error) {
	s.forget(orderID)
	if _, err := s.ListAll(ctx, ""); err != nil {
		return domain.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

func (s *Service) forget(orderID string) {
	s.mu.Lock()
	delete(s.orders, orderID)
	s.mu.Unlock()
}

// normalize lowercases a status read from the server.
func normalize(st domain.OrderStatus) domain.OrderStatus {
	return domain.OrderStatus(strings.ToLower(strings.TrimSpace(string(st))))
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
}
