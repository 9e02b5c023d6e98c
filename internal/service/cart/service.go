package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"colognehub/internal/domain"
	"colognehub/internal/logging"
	"colognehub/internal/notify"
	"colognehub/internal/pending"
)

var (
	ErrExceedsStock    = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrLineNotFound    = fmt.Errorf("cart line %w", domain.ErrNotFound)
)

// stamp identifies one mutation of a line. epoch advances on every refetch.
type stamp struct {
	epoch uint64
	seq   uint64
}

type cartAPI interface {
	Cart(ctx context.Context) ([]domain.CartLine, error)
	AddToCart(ctx context.Context, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, productID string) error
}

type gate interface {
	RequireAuthWithAction(ctx context.Context, action domain.PendingAction, immediate func() error) (bool, error)
}

type notifier interface {
	Success(message string) notify.Notification
	Error(message string) notify.Notification
}

// Line is a cart line plus its in-flight flag.
type Line struct {
	domain.CartLine
	Updating bool `json:"updating"`
}

// Service keeps the local cart and applies mutations optimistically. A failed
// remote call restores the line's pre-mutation snapshot unless a newer
// mutation or refetch touched that line since, in which case the cart is
// refetched from the server.
type Service struct {
	api      cartAPI
	gate     gate
	notifier notifier
	describe func(error) string
	logger   *zap.Logger

	mu       sync.Mutex
	lines    []domain.CartLine
	members  map[string]bool
	updating map[string]int
	versions map[string]uint64
	epoch    uint64

	refetches singleflight.Group
}

// New builds a Service. describe maps API errors to shopper messages.
func New(api cartAPI, g gate, n notifier, describe func(error) string, logger *zap.Logger) *Service {
	if describe == nil {
		describe = func(err error) string { return err.Error() }
	}
	return &Service{
		api:      api,
		gate:     g,
		notifier: n,
		describe: describe,
		logger:   logging.OrNop(logger),
		members:  make(map[string]bool),
		updating: make(map[string]int),
		versions: make(map[string]uint64),
	}
}

// RegisterPending lets a deferred ADD_TO_CART replay through AddNow.
func (s *Service) RegisterPending(c *pending.Coordinator) error {
	return c.RegisterAddToCart(func(ctx context.Context, in domain.AddToCartData) error {
		return s.AddNow(ctx, in.ProductID, in.Quantity)
	})
}

// Load replaces the local cart with the server's.
func (s *Service) Load(ctx context.Context) ([]Line, error) {
	if err := s.refetch(ctx); err != nil {
		return nil, err
	}
	return s.Lines(), nil
}

// Lines returns the local cart.
func (s *Service) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		out[i] = Line{CartLine: l, Updating: s.updating[l.ProductID] > 0}
	}
	return out
}

// CartLines returns the local cart without flags.
func (s *Service) CartLines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.lines...)
}

// Contains reports whether productID is in the cart.
func (s *Service) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[productID]
}

// Count is the number of units on in-stock lines.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		if l.InStock() {
			n += l.Quantity
		}
	}
	return n
}

// Clear empties the local cart, e.g. after a successful checkout.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.members = make(map[string]bool)
	s.epoch++
}

// Add puts productID in the cart, deferring through login when the shopper
// is a guest. added is false when the action was deferred.
func (s *Service) Add(ctx context.Context, productID string, quantity int) (added bool, err error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return false, errors.New("productId required")
	}
	if quantity <= 0 {
		quantity = 1
	}
	action := domain.PendingAction{
		Type: domain.ActionAddToCart,
		Data: map[string]interface{}{"productId": productID, "quantity": quantity},
	}
	return s.gate.RequireAuthWithAction(ctx, action, func() error {
		return s.AddNow(ctx, productID, quantity)
	})
}

// AddNow adds without gating. Quantities are not merged locally; the server
// decides what a duplicate add means.
func (s *Service) AddNow(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.api.AddToCart(ctx, productID, quantity); err != nil {
		s.fail("add to cart failed", productID, err)
		return err
	}
	s.mu.Lock()
	s.members[productID] = true
	s.mu.Unlock()
	s.success("Added to cart")

	if err := s.refetch(ctx); err != nil {
		s.logger.Warn("cart reload after add failed", zap.Error(err))
	}
	return nil
}

// UpdateQuantity sets a line's quantity. Quantities above the line's cached
// stock are rejected without contacting the server.
func (s *Service) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	idx := s.indexOf(productID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrLineNotFound
	}
	if quantity < 1 {
		s.mu.Unlock()
		return ErrInvalidQuantity
	}
	line := s.lines[idx]
	if quantity > line.StockQuantity {
		s.mu.Unlock()
		return fmt.Errorf("%w: only %d left", ErrExceedsStock, line.StockQuantity)
	}
	version := s.begin(productID)
	s.lines[idx].Quantity = quantity
	s.mu.Unlock()

	err := s.api.UpdateCartItem(ctx, productID, quantity)
	s.finish(ctx, productID, version, err, func() {
		if i := s.indexOf(productID); i >= 0 {
			s.lines[i] = line
		}
	})
	if err != nil {
		s.fail("cart quantity update failed", productID, err)
	}
	return err
}

// Remove drops a line optimistically.
func (s *Service) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	idx := s.indexOf(productID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrLineNotFound
	}
	line := s.lines[idx]
	version := s.begin(productID)
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	delete(s.members, productID)
	s.mu.Unlock()

	err := s.api.RemoveCartItem(ctx, productID)
	s.finish(ctx, productID, version, err, func() {
		if s.indexOf(productID) >= 0 {
			return
		}
		at := idx
		if at > len(s.lines) {
			at = len(s.lines)
		}
		s.lines = append(s.lines[:at], append([]domain.CartLine{line}, s.lines[at:]...)...)
		s.members[productID] = true
	})
	if err != nil {
		s.fail("cart remove failed", productID, err)
		return err
	}
	s.success("Removed from cart")
	return nil
}

// begin marks productID as updating and stamps the mutation. Callers hold s.mu.
func (s *Service) begin(productID string) stamp {
	s.updating[productID]++
	s.versions[productID]++
	return stamp{epoch: s.epoch, seq: s.versions[productID]}
}

// finish clears the updating flag and, on failure, either restores the
// snapshot or refetches when the line has moved on.
func (s *Service) finish(ctx context.Context, productID string, version stamp, err error, restore func()) {
	s.mu.Lock()
	if s.updating[productID]--; s.updating[productID] <= 0 {
		delete(s.updating, productID)
	}
	if err == nil {
		s.mu.Unlock()
		return
	}
	if (stamp{epoch: s.epoch, seq: s.versions[productID]}) == version {
		restore()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	if rerr := s.refetch(ctx); rerr != nil {
		s.logger.Warn("cart refetch after failed mutation", zap.String("productId", productID), zap.Error(rerr))
	}
}

// refetch loads the authoritative cart. Concurrent callers share one request.
func (s *Service) refetch(ctx context.Context) error {
	_, err, _ := s.refetches.Do("cart", func() (interface{}, error) {
		lines, err := s.api.Cart(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.lines = lines
		s.members = make(map[string]bool, len(lines))
		for _, l := range lines {
			s.members[l.ProductID] = true
		}
		s.epoch++
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

func (s *Service) indexOf(productID string) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Service) success(msg string) {
	if s.notifier != nil {
		s.notifier.Success(msg)
	}
}

func (s *Service) fail(msg, productID string, err error) {
	s.logger.Warn(msg, zap.String("productId", productID), zap.Error(err))
	if s.notifier != nil {
		s.notifier.Error(s.describe(err))
	}
}
