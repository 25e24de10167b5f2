package cli

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/internal/redis"
	"github.com/mesh-intelligence/focusflow/internal/sqlite"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// newStore returns a closed engine for the configured backend.
func newStore(backend string, log logger.Logger) (types.Store, error) {
	switch backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(log), nil
	case types.BackendRedis:
		return redis.NewEngine(log), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, backend)
	}
}

// openStore opens the configured store. The caller must Close it.
func (a *app) openStore(ctx context.Context) (types.Store, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, userError(fmt.Errorf("config: %w", err))
	}
	store, err := newStore(cfg.Backend, a.log)
	if err != nil {
		return nil, userError(err)
	}
	if err := store.Open(ctx, cfg); err != nil {
		return nil, sysError(fmt.Errorf("open store: %w", err))
	}
	return store, nil
}

// withStore opens the store, runs fn and closes the store.
func (a *app) withStore(ctx context.Context, fn func(types.Store) error) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
