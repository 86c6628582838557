package persistence

import (
	"context"
	"strings"

	"bizdash/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"persistence",
		fx.Provide(
			newStorage,
			func(cfg config.Config) (*Sealer, error) {
				return NewSealer(cfg.StorageKey)
			},
			NewAdapter,
		),
		fx.Invoke(func(lc fx.Lifecycle, adapter *Adapter, storage Storage) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					adapter.Rehydrate(ctx)
					adapter.Attach()
					return nil
				},
				OnStop: func(_ context.Context) error {
					adapter.Detach()
					return storage.Close()
				},
			})
		}),
	)
}

// newStorage opens the configured storage. A storage that cannot be opened
// degrades to memory so startup never fails on it.
func newStorage(cfg config.Config, logger *zap.Logger) Storage {
	logger = logger.Named("persistence")
	if strings.EqualFold(cfg.StorageDriver, "memory") {
		return NewMemoryStorage()
	}
	storage, err := OpenSQL(cfg.StorageDriver, cfg.StorageDSN, cfg.DataDir)
	if err != nil {
		logger.Warn("durable storage unavailable; state will not survive restart",
			zap.String("driver", cfg.StorageDriver),
			zap.Error(err),
		)
		return NewMemoryStorage()
	}
	return storage
}

