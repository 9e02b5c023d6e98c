// Package pending lets a guest's gated intent survive the login detour and
// replays it once the session is authenticated.
package pending

import (
	"context"
	"errors"
	"fmt"

	"github.com/asaskevich/EventBus"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"colognehub/internal/domain"
	"colognehub/internal/logging"
	"colognehub/internal/notify"
	"colognehub/internal/session"
)

// ErrUnknownAction is reported when a stored action has no registered handler.
var ErrUnknownAction = errors.New("no handler registered for pending action")

// Handler replays a stored action. It must not gate again.
type Handler func(ctx context.Context, data map[string]interface{}) error

// Prompter asks the shopper to log in.
type Prompter interface {
	PromptLogin(ctx context.Context, action domain.PendingAction)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(ctx context.Context, action domain.PendingAction)

func (f PromptFunc) PromptLogin(ctx context.Context, action domain.PendingAction) { f(ctx, action) }

type sessionStore interface {
	Authenticated(ctx context.Context) (bool, error)
	GetJSON(ctx context.Context, key string, v interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type notifier interface {
	Error(message string) notify.Notification
}

// delivery is the single argument published on the bus. Handlers append
// their outcome to errs.
type delivery struct {
	data map[string]interface{}
	errs []error
}

// Coordinator persists at most one pending action. A second gated attempt
// while logged out overwrites the first.
type Coordinator struct {
	store    sessionStore
	bus      EventBus.Bus
	prompter Prompter
	notifier notifier
	logger   *zap.Logger
}

// New builds a Coordinator. notifier and prompter may be nil.
func New(store sessionStore, prompter Prompter, n notifier, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		bus:      EventBus.New(),
		prompter: prompter,
		notifier: n,
		logger:   logging.OrNop(logger),
	}
}

func topic(t domain.ActionType) string {
	return "pending:" + string(t)
}

// Register adds a handler for actions of type t.
func (c *Coordinator) Register(t domain.ActionType, h Handler) error {
	if h == nil {
		return errors.New("handler required")
	}
	err := c.bus.Subscribe(topic(t), func(ctx context.Context, d *delivery) {
		d.errs = append(d.errs, h(ctx, d.data))
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", t, err)
	}
	return nil
}

// RegisterAddToCart registers a typed ADD_TO_CART handler.
func (c *Coordinator) RegisterAddToCart(fn func(ctx context.Context, in domain.AddToCartData) error) error {
	return c.Register(domain.ActionAddToCart, func(ctx context.Context, data map[string]interface{}) error {
		var in domain.AddToCartData
		if err := Decode(data, &in); err != nil {
			return err
		}
		if in.Quantity <= 0 {
			in.Quantity = 1
		}
		return fn(ctx, in)
	})
}

// RegisterToggleWishlist registers a typed TOGGLE_WISHLIST handler.
func (c *Coordinator) RegisterToggleWishlist(fn func(ctx context.Context, in domain.ToggleWishlistData) error) error {
	return c.Register(domain.ActionToggleWishlist, func(ctx context.Context, data map[string]interface{}) error {
		var in domain.ToggleWishlistData
		if err := Decode(data, &in); err != nil {
			return err
		}
		return fn(ctx, in)
	})
}

// Decode maps an action payload onto a typed struct. Numbers stored as JSON
// floats or strings are accepted for integer fields.
func Decode(data map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("decode pending action: %w", err)
	}
	return nil
}

// RequireAuthWithAction runs immediate synchronously when the session is
// authenticated and stores nothing. Otherwise it saves action as the pending
// action and prompts for login; immediate is not called and ran is false.
func (c *Coordinator) RequireAuthWithAction(ctx context.Context, action domain.PendingAction, immediate func() error) (ran bool, err error) {
	authed, err := c.store.Authenticated(ctx)
	if err != nil {
		return false, fmt.Errorf("read session: %w", err)
	}
	if authed {
		return true, immediate()
	}
	if action.Data == nil {
		action.Data = map[string]interface{}{}
	}
	if err := c.store.SetJSON(ctx, session.KeyPendingAction, action); err != nil {
		return false, fmt.Errorf("save pending action: %w", err)
	}
	c.logger.Info("action deferred until login", zap.String("type", string(action.Type)))
	if c.prompter != nil {
		c.prompter.PromptLogin(ctx, action)
	}
	return false, nil
}

// Peek returns the stored pending action without clearing it.
func (c *Coordinator) Peek(ctx context.Context) (domain.PendingAction, bool, error) {
	var action domain.PendingAction
	ok, err := c.store.GetJSON(ctx, session.KeyPendingAction, &action)
	if err != nil || !ok {
		return domain.PendingAction{}, false, err
	}
	return action, true, nil
}

// Resume reads and clears the pending action, then dispatches it once to
// the handlers registered for its type. It reports whether an action was
// dispatched. Handlers surface their own failures; unknown types,
// unreadable payloads and panics become error notifications here.
func (c *Coordinator) Resume(ctx context.Context) (bool, error) {
	var action domain.PendingAction
	ok, err := c.store.GetJSON(ctx, session.KeyPendingAction, &action)
	if err != nil {
		c.logger.Warn("unreadable pending action dropped", zap.Error(err))
		c.notify("We couldn't resume your last action.")
		if delErr := c.store.Delete(ctx, session.KeyPendingAction); delErr != nil {
			return false, delErr
		}
		return false, nil
	}
	if !ok {
		return false, nil
	}
	// Cleared before dispatch so a crash or a second Resume cannot replay it.
	if err := c.store.Delete(ctx, session.KeyPendingAction); err != nil {
		return false, fmt.Errorf("clear pending action: %w", err)
	}

	if !c.hasHandler(action.Type) {
		c.logger.Warn("pending action without handler", zap.String("type", string(action.Type)))
		c.notify("We couldn't resume your last action.")
		return false, fmt.Errorf("%w: %s", ErrUnknownAction, action.Type)
	}

	errs := c.dispatch(ctx, action)
	for _, err := range errs {
		if err != nil {
			c.logger.Warn("pending action failed", zap.String("type", string(action.Type)), zap.Error(err))
		}
	}
	return true, nil
}

func (c *Coordinator) dispatch(ctx context.Context, action domain.PendingAction) (errs []error) {
	d := &delivery{data: action.Data}
	if d.data == nil {
		d.data = map[string]interface{}{}
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("pending action handler panicked",
				zap.String("type", string(action.Type)), zap.Any("panic", r))
			c.notify("Something went wrong while resuming your last action.")
			errs = append(d.errs, fmt.Errorf("handler panic: %v", r))
		}
	}()
	c.bus.Publish(topic(action.Type), ctx, d)
	return d.errs
}

func (c *Coordinator) hasHandler(t domain.ActionType) bool {
	return c.bus.HasCallback(topic(t))
}

func (c *Coordinator) notify(msg string) {
	if c.notifier != nil {
		c.notifier.Error(msg)
	}
}
