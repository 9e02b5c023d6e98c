package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"colognehub/internal/apiclient"
	"colognehub/internal/config"
	"colognehub/internal/domain"
	"colognehub/internal/httpserver"
	"colognehub/internal/logging"
	"colognehub/internal/notify"
	"colognehub/internal/pending"
	"colognehub/internal/service/admin"
	"colognehub/internal/service/auth"
	"colognehub/internal/service/cart"
	"colognehub/internal/service/catalog"
	"colognehub/internal/service/checkout"
	"colognehub/internal/service/order"
	"colognehub/internal/service/wishlist"
	"colognehub/internal/session"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	defer logger.Sync()

	ctx := context.Background()
	store, ready, closeStore, err := openSession(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open session store", zap.String("driver", cfg.SessionDriver), zap.Error(err))
	}
	defer closeStore()

	queue := notify.NewQueue(cfg.NotificationTTL)
	defer queue.Close()

	client := apiclient.New(cfg.APIBaseURL, store,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithLogger(logger.Named("api")),
	)

	coordinator := pending.New(store, loginPrompter(queue, logger), queue, logger.Named("pending"))

	catalogService := catalog.New(client, catalog.NewView(cfg.PageSize), queue, apiclient.Message, logger.Named("catalog"))
	cartService := cart.New(client, coordinator, queue, apiclient.Message, logger.Named("cart"))
	wishlistService := wishlist.New(client, cartService, coordinator, queue, apiclient.Message, logger.Named("wishlist"))
	checkoutService := checkout.New(client, cartService, queue, apiclient.Message, cfg.PromoErrorTTL, logger.Named("checkout"))
	authService := auth.New(client, store, coordinator, logger.Named("auth"))
	orderService := order.New(client, client, logger.Named("orders"))
	adminService := admin.New(client, admin.DefaultLowStock, logger.Named("admin"))

	if err := cartService.RegisterPending(coordinator); err != nil {
		logger.Fatal("register cart replay", zap.Error(err))
	}
	if err := wishlistService.RegisterPending(coordinator); err != nil {
		logger.Fatal("register wishlist replay", zap.Error(err))
	}

	unsubscribe := store.Subscribe(syncOnAuthChange(store, cartService, wishlistService, logger))
	defer unsubscribe()

	if err := catalogService.Refresh(ctx); err != nil {
		logger.Warn("initial catalog load failed", zap.Error(err))
	}
	if ok, _ := store.Authenticated(ctx); ok {
		if _, err := cartService.Load(ctx); err != nil {
			logger.Warn("initial cart load failed", zap.Error(err))
		}
		if _, err := wishlistService.Load(ctx); err != nil {
			logger.Warn("initial wishlist load failed", zap.Error(err))
		}
	}

	sched, err := startScheduler(cfg.CatalogRefresh, catalogService, logger)
	if err != nil {
		logger.Fatal("schedule catalog refresh", zap.String("spec", cfg.CatalogRefresh), zap.Error(err))
	}
	defer sched.Stop()

	srv, err := httpserver.New(cfg.HTTPAddr, logger.Named("http"), httpserver.Deps{
		Session:       store,
		Catalog:       catalogService,
		Cart:          cartService,
		Wishlist:      wishlistService,
		Checkout:      checkoutService,
		Auth:          authService,
		Orders:        orderService,
		Admin:         adminService,
		Notifications: queue,
		Ready:         ready,
	}, httpserver.Options{
		CORSOrigins: cfg.CORSOrigins,
		Production:  cfg.IsProduction(),
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

func loginPrompter(queue *notify.Queue, logger *zap.Logger) pending.Prompter {
	return pending.PromptFunc(func(_ context.Context, action domain.PendingAction) {
		logger.Info("login required", zap.String("action", string(action.Type)))
		queue.Info("Please log in to continue.")
	})
}

// syncOnAuthChange drops shopper state on logout and reloads it on login.
// Reloads run off the broadcasting goroutine.
func syncOnAuthChange(store *session.Store, carts *cart.Service, wishes *wishlist.Service, logger *zap.Logger) func(session.Change) {
	return func(c session.Change) {
		if !c.Has(session.KeyToken) {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			ok, err := store.Authenticated(ctx)
			if err != nil {
				logger.Warn("read session after change", zap.Error(err))
				return
			}
			if !ok {
				carts.Clear()
				wishes.Clear()
				return
			}
			if _, err := carts.Load(ctx); err != nil {
				logger.Warn("cart reload after login failed", zap.Error(err))
			}
			if _, err := wishes.Load(ctx); err != nil {
				logger.Warn("wishlist reload after login failed", zap.Error(err))
			}
		}()
	}
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func startScheduler(spec string, catalogService *catalog.Service, logger *zap.Logger) (*cron.Cron, error) {
	sched := cron.New(cron.WithLocation(time.UTC), cron.WithParser(cronParser))
	if spec != "" {
		_, err := sched.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := catalogService.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scheduled catalog refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			return nil, err
		}
	}
	sched.Start()
	return sched, nil
}
