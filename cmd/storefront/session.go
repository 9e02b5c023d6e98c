package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"colognehub/internal/config"
	"colognehub/internal/db"
	"colognehub/internal/migrate"
	"colognehub/internal/session"
)

// openSession opens the configured session store. ready checks that its
// backing service is reachable; it is nil for local drivers.
func openSession(ctx context.Context, cfg config.Config, logger *zap.Logger) (store *session.Store, ready func(context.Context) error, closeFn func(), err error) {
	release := func() {}
	switch cfg.SessionDriver {
	case config.SessionMemory:
		store = session.NewMemory()
	case config.SessionBolt, "":
		store, err = session.OpenBolt(cfg.SessionFile)
		if err != nil {
			return nil, nil, nil, err
		}
	case config.SessionRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		store = session.NewRedis(client, cfg.SessionPrefix)
		ready = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	case config.SessionPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		store = session.NewPostgres(pool, cfg.SessionPrefix)
		ready = pool.Ping
		release = pool.Close
	default:
		return nil, nil, nil, fmt.Errorf("unknown session driver %q", cfg.SessionDriver)
	}

	logger.Info("session store opened", zap.String("driver", cfg.SessionDriver))
	return store, ready, func() {
		if err := store.Close(); err != nil {
			logger.Warn("close session store", zap.Error(err))
		}
		release()
	}, nil
}
