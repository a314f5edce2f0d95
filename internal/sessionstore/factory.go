package sessionstore

import (
	"context"
	"fmt"

	"promptagent/internal/domain"
	"promptagent/internal/infra"
)

// Open builds the store selected by cfg.SessionStore. The returned close
// function releases its connections and is never nil.
func Open(ctx context.Context, cfg *infra.Config, logger infra.Logger) (domain.SessionRepository, func(), error) {
	noop := func() {}
	switch cfg.SessionStore {
	case infra.StoreMemory, "":
		return NewMemory(), noop, nil
	case infra.StorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, noop, err
		}
		store := NewPostgresPool(pool, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return store, pool.Close, nil
	case infra.StoreSQLite:
		store, err := NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	case infra.StoreRedis:
		store, err := NewRedis(ctx, cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unsupported session store %q", cfg.SessionStore)
	}
}
