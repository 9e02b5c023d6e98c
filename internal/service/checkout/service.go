package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"colognehub/internal/apiclient"
	"colognehub/internal/domain"
	"colognehub/internal/logging"
	"colognehub/internal/notify"
	"colognehub/internal/validation"
)

var (
	ErrInvalidPromo = errors.New("invalid promo code")
	ErrEmptyCart    = errors.New("your cart has no items in stock")
)

const invalidPromoMessage = "Invalid promo code"

// DefaultPromoErrorTTL is how long an invalid promo message stays visible.
const DefaultPromoErrorTTL = 3 * time.Second

type checkoutAPI interface {
	Checkout(ctx context.Context, in apiclient.CheckoutRequest) (*domain.Order, error)
}

type cartSource interface {
	CartLines() []domain.CartLine
	Clear()
}

type notifier interface {
	Success(message string) notify.Notification
	Error(message string) notify.Notification
}

// PlaceOrderInput is the checkout form.
type PlaceOrderInput struct {
	ShippingAddress domain.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod" validate:"required"`
}

// PromoState is what the promo field shows.
type PromoState struct {
	Applied *Promo `json:"applied,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Service struct {
	api      checkoutAPI
	cart     cartSource
	notifier notifier
	describe func(error) string
	errTTL   time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	promo    *Promo
	promoErr string
	errTimer *time.Timer
}

func New(api checkoutAPI, cart cartSource, n notifier, describe func(error) string, promoErrTTL time.Duration, logger *zap.Logger) *Service {
	if describe == nil {
		describe = func(err error) string { return err.Error() }
	}
	if promoErrTTL <= 0 {
		promoErrTTL = DefaultPromoErrorTTL
	}
	return &Service{
		api:      api,
		cart:     cart,
		notifier: n,
		describe: describe,
		errTTL:   promoErrTTL,
		logger:   logging.OrNop(logger),
	}
}

// Totals computes the summary for the current cart and promo.
func (s *Service) Totals() Totals {
	s.mu.Lock()
	promo := s.promo
	s.mu.Unlock()
	return Calculate(s.cart.CartLines(), promo)
}

// ApplyPromo applies code. An unknown code leaves any applied promo in place
// and shows an error that clears itself after the configured delay.
func (s *Service) ApplyPromo(code string) (Promo, error) {
	promo, ok := LookupPromo(code)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errTimer != nil {
		s.errTimer.Stop()
		s.errTimer = nil
	}
	if !ok {
		s.promoErr = invalidPromoMessage
		var timer *time.Timer
		timer = time.AfterFunc(s.errTTL, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.errTimer == timer {
				s.promoErr = ""
				s.errTimer = nil
			}
		})
		s.errTimer = timer
		return Promo{}, ErrInvalidPromo
	}
	s.promoErr = ""
	s.promo = &promo
	return promo, nil
}

// RemovePromo drops the applied promo.
func (s *Service) RemovePromo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promo = nil
}

// Promo returns the promo field state.
func (s *Service) Promo() PromoState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := PromoState{Error: s.promoErr}
	if s.promo != nil {
		p := *s.promo
		st.Applied = &p
	}
	return st
}

// PlaceOrder validates the form, submits the order and empties the local
// cart once the backend accepts it.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	totals := s.Totals()
	if totals.ItemCount == 0 {
		return nil, ErrEmptyCart
	}
	req := apiclient.CheckoutRequest{
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        totals.Subtotal.InexactFloat64(),
		Discount:        totals.Discount.InexactFloat64(),
		Shipping:        totals.Shipping.InexactFloat64(),
		Tax:             totals.Tax.InexactFloat64(),
		Total:           totals.Total.InexactFloat64(),
	}
	if totals.Promo != nil {
		req.PromoCode = totals.Promo.Code
	}
	order, err := s.api.Checkout(ctx, req)
	if err != nil {
		s.logger.Warn("checkout failed", zap.Error(err))
		if s.notifier != nil {
			s.notifier.Error(s.describe(err))
		}
		return nil, err
	}
	s.cart.Clear()
	s.RemovePromo()
	if s.notifier != nil {
		s.notifier.Success("Order placed successfully")
	}
	s.logger.Info("order placed", zap.String("orderId", order.OrderID), zap.String("total", totals.Total.StringFixed(2)))
	return order, nil
}
