package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"colognehub/internal/domain"
	"colognehub/internal/logging"
	"colognehub/internal/notify"
)

type productAPI interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

type notifier interface {
	Error(message string) notify.Notification
}

// Service loads the catalog into a View. A refresh started while another is
// in flight cancels the older one and its response is discarded.
type Service struct {
	api      productAPI
	view     *View
	notifier notifier
	describe func(error) string
	logger   *zap.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// New builds a Service. describe turns an API error into a shopper-facing
// message; nil uses err.Error().
func New(api productAPI, view *View, n notifier, describe func(error) string, logger *zap.Logger) *Service {
	if describe == nil {
		describe = func(err error) string { return err.Error() }
	}
	return &Service{api: api, view: view, notifier: n, describe: describe, logger: logging.OrNop(logger)}
}

// View returns the view fed by this service.
func (s *Service) View() *View {
	return s.view
}

// Refresh fetches the product list and hands it to the view.
func (s *Service) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	products, err := s.api.Products(ctx)

	s.mu.Lock()
	stale := gen != s.gen
	if !stale {
		s.cancel = nil
	}
	s.mu.Unlock()
	if stale {
		s.logger.Debug("discarding stale catalog response", zap.Uint64("generation", gen))
		return context.Canceled
	}
	if err != nil {
		s.logger.Warn("catalog refresh failed", zap.Error(err))
		if s.notifier != nil {
			s.notifier.Error(s.describe(err))
		}
		return err
	}
	s.view.SetProducts(products)
	s.logger.Debug("catalog refreshed", zap.Int("products", len(products)))
	return nil
}

// Product looks up a loaded product for the detail overlay.
func (s *Service) Product(id string) (domain.Product, error) {
	p, ok := s.view.Product(id)
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}
