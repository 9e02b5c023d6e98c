package wishlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"colognehub/internal/domain"
	"colognehub/internal/notify"
	"colognehub/internal/pending"
	"colognehub/internal/session"
)

type stubAPI struct {
	entries     []domain.WishlistEntry
	addCalls    []string
	removeCalls []string
	removeErr   error
}

func (s *stubAPI) Wishlist(context.Context) ([]domain.WishlistEntry, error) {
	return append([]domain.WishlistEntry(nil), s.entries...), nil
}

func (s *stubAPI) AddToWishlist(_ context.Context, productID string) error {
	s.addCalls = append(s.addCalls, productID)
	s.entries = append(s.entries, domain.WishlistEntry{ProductID: productID})
	return nil
}

func (s *stubAPI) RemoveFromWishlist(_ context.Context, productID string) error {
	s.removeCalls = append(s.removeCalls, productID)
	return s.removeErr
}

type stubCart struct {
	added []string
	err   error
}

func (c *stubCart) AddNow(_ context.Context, productID string, _ int) error {
	if c.err != nil {
		return c.err
	}
	c.added = append(c.added, productID)
	return nil
}

type openGate struct{}

func (openGate) RequireAuthWithAction(_ context.Context, _ domain.PendingAction, immediate func() error) (bool, error) {
	return true, immediate()
}

func TestToggleReflectsMembership(t *testing.T) {
	api := &stubAPI{}
	svc := New(api, &stubCart{}, openGate{}, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "p1"); err != nil {
		t.Fatalf("toggle add: %v", err)
	}
	if !svc.Contains("p1") || len(api.addCalls) != 1 {
		t.Fatalf("expected p1 saved")
	}
	if _, err := svc.Toggle(ctx, "p1"); err != nil {
		t.Fatalf("toggle remove: %v", err)
	}
	if svc.Contains("p1") || len(api.removeCalls) != 1 || len(svc.Entries()) != 0 {
		t.Fatalf("expected p1 removed")
	}
}

func TestMoveToCartIsTwoSequentialCalls(t *testing.T) {
	api := &stubAPI{entries: []domain.WishlistEntry{{ProductID: "p1"}}}
	cart := &stubCart{}
	svc := New(api, cart, openGate{}, nil, nil, nil)
	ctx := context.Background()
	if _, err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := svc.MoveToCart(ctx, "p1"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if len(cart.added) != 1 || svc.Contains("p1") {
		t.Fatalf("expected p1 moved, cart=%v", cart.added)
	}
}

func TestMoveToCartKeepsCartAddWhenRemoveFails(t *testing.T) {
	api := &stubAPI{entries: []domain.WishlistEntry{{ProductID: "p1"}}, removeErr: errors.New("remove failed")}
	cart := &stubCart{}
	q := notify.NewQueue(time.Minute)
	defer q.Close()
	svc := New(api, cart, openGate{}, q, nil, nil)
	ctx := context.Background()
	_, _ = svc.Load(ctx)

	if err := svc.MoveToCart(ctx, "p1"); err == nil {
		t.Fatalf("expected error")
	}
	if len(cart.added) != 1 || !svc.Contains("p1") {
		t.Fatalf("expected product in both cart and wishlist")
	}
	if len(q.List()) != 1 {
		t.Fatalf("expected error notification")
	}
}

func TestMoveToCartStopsWhenAddFails(t *testing.T) {
	api := &stubAPI{entries: []domain.WishlistEntry{{ProductID: "p1"}}}
	svc := New(api, &stubCart{err: errors.New("out of stock")}, openGate{}, nil, nil, nil)
	_, _ = svc.Load(context.Background())

	if err := svc.MoveToCart(context.Background(), "p1"); err == nil {
		t.Fatalf("expected error")
	}
	if len(api.removeCalls) != 0 {
		t.Fatalf("remove must not run after a failed add")
	}
}

func TestDeferredToggleReplaysAsAdd(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemory()
	coord := pending.New(store, nil, nil, nil)
	api := &stubAPI{entries: []domain.WishlistEntry{{ProductID: "already"}}}
	svc := New(api, &stubCart{}, coord, nil, nil, nil)
	if err := svc.RegisterPending(coord); err != nil {
		t.Fatalf("register: %v", err)
	}

	ran, err := svc.Toggle(ctx, "p5")
	if err != nil || ran {
		t.Fatalf("expected deferral, got %v %v", ran, err)
	}
	_ = store.Set(ctx, session.KeyToken, "tok")
	if _, err := coord.Resume(ctx); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if len(api.addCalls) != 1 || api.addCalls[0] != "p5" || !svc.Contains("p5") {
		t.Fatalf("expected p5 added once, got %v", api.addCalls)
	}

	_ = store.Delete(ctx, session.KeyToken)
	_, _ = svc.Toggle(ctx, "p5")
	_ = store.Set(ctx, session.KeyToken, "tok")
	_, _ = coord.Resume(ctx)
	if len(api.addCalls) != 1 {
		t.Fatalf("replay of a saved product must not add again, got %v", api.addCalls)
	}
}

func TestClearForgetsMembership(t *testing.T) {
	api := &stubAPI{entries: []domain.WishlistEntry{{ProductID: "p1"}}}
	svc := New(api, &stubCart{}, openGate{}, nil, nil, nil)
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	svc.Clear()
	if svc.Contains("p1") || len(svc.Entries()) != 0 {
		t.Fatalf("expected empty wishlist after clear")
	}
}
