package wishlist

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"colognehub/internal/domain"
	"colognehub/internal/logging"
	"colognehub/internal/notify"
	"colognehub/internal/pending"
)

type wishlistAPI interface {
	Wishlist(ctx context.Context) ([]domain.WishlistEntry, error)
	AddToWishlist(ctx context.Context, productID string) error
	RemoveFromWishlist(ctx context.Context, productID string) error
}

type cartAdder interface {
	AddNow(ctx context.Context, productID string, quantity int) error
}

type gate interface {
	RequireAuthWithAction(ctx context.Context, action domain.PendingAction, immediate func() error) (bool, error)
}

type notifier interface {
	Success(message string) notify.Notification
	Error(message string) notify.Notification
}

// Service tracks wishlist membership. Toggles on the same product are
// collapsed while one is in flight.
type Service struct {
	api      wishlistAPI
	cart     cartAdder
	gate     gate
	notifier notifier
	describe func(error) string
	logger   *zap.Logger

	mu      sync.Mutex
	entries []domain.WishlistEntry
	members map[string]bool

	toggles singleflight.Group
}

func New(api wishlistAPI, cart cartAdder, g gate, n notifier, describe func(error) string, logger *zap.Logger) *Service {
	if describe == nil {
		describe = func(err error) string { return err.Error() }
	}
	return &Service{
		api:      api,
		cart:     cart,
		gate:     g,
		notifier: n,
		describe: describe,
		logger:   logging.OrNop(logger),
		members:  make(map[string]bool),
	}
}

// RegisterPending replays a deferred TOGGLE_WISHLIST. Unlike Toggle, the
// replay never removes: the guest asked to save the product, so it reloads
// the wishlist and adds the product only when the account does not already
// hold it.
func (s *Service) RegisterPending(c *pending.Coordinator) error {
	return c.RegisterToggleWishlist(func(ctx context.Context, in domain.ToggleWishlistData) error {
		if _, err := s.Load(ctx); err != nil {
			s.logger.Warn("wishlist reload before replay failed", zap.Error(err))
		}
		if s.Contains(in.ProductID) {
			return nil
		}
		_, err := s.ToggleNow(ctx, in.ProductID)
		return err
	})
}

// Load replaces local state with the server's wishlist.
func (s *Service) Load(ctx context.Context) ([]domain.WishlistEntry, error) {
	entries, err := s.api.Wishlist(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.members = make(map[string]bool, len(entries))
	for _, e := range entries {
		s.members[e.ProductID] = true
	}
	return append([]domain.WishlistEntry(nil), entries...), nil
}

// Entries returns the local wishlist.
func (s *Service) Entries() []domain.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WishlistEntry(nil), s.entries...)
}

// Contains reports whether productID is saved.
func (s *Service) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[productID]
}

// Clear forgets the local wishlist, e.g. on logout.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.members = make(map[string]bool)
}

// Toggle flips membership of productID, deferring through login for guests.
// ran is false when the action was deferred.
func (s *Service) Toggle(ctx context.Context, productID string) (ran bool, err error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return false, errors.New("productId required")
	}
	action := domain.PendingAction{
		Type: domain.ActionToggleWishlist,
		Data: map[string]interface{}{"productId": productID},
	}
	return s.gate.RequireAuthWithAction(ctx, action, func() error {
		_, err := s.ToggleNow(ctx, productID)
		return err
	})
}

// ToggleNow flips membership without gating and returns the new state.
func (s *Service) ToggleNow(ctx context.Context, productID string) (bool, error) {
	v, err, _ := s.toggles.Do(productID, func() (interface{}, error) {
		if s.Contains(productID) {
			if err := s.api.RemoveFromWishlist(ctx, productID); err != nil {
				return true, err
			}
			s.drop(productID)
			s.success("Removed from wishlist")
			return false, nil
		}
		if err := s.api.AddToWishlist(ctx, productID); err != nil {
			return false, err
		}
		s.mu.Lock()
		if !s.members[productID] {
			s.members[productID] = true
			s.entries = append(s.entries, domain.WishlistEntry{ProductID: productID})
		}
		s.mu.Unlock()
		s.success("Added to wishlist")
		return true, nil
	})
	if err != nil {
		s.fail("wishlist toggle failed", productID, err)
	}
	saved, _ := v.(bool)
	return saved, err
}

// MoveToCart adds productID to the cart and then removes it from the
// wishlist. The two calls are independent; a failed removal leaves the
// product in both.
func (s *Service) MoveToCart(ctx context.Context, productID string) error {
	if err := s.cart.AddNow(ctx, productID, 1); err != nil {
		return err
	}
	if err := s.api.RemoveFromWishlist(ctx, productID); err != nil {
		s.fail("wishlist remove after move failed", productID, err)
		return err
	}
	s.drop(productID)
	return nil
}

func (s *Service) drop(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, productID)
	for i, e := range s.entries {
		if e.ProductID == productID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
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
