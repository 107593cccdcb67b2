package persistence

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/williamhogman/cluster-registry/registry/internal/config"
)

// NewStore creates the store selected by the configuration
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Type {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageRedis:
		client, err := newRedisClient(cfg.Storage.RedisURI)
		if err != nil {
			return nil, err
		}
		return newRedisStore(client, cfg.Storage.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// ProvideStore creates the cluster store and closes it when the app stops
func ProvideStore(cfg *config.Config, lc fx.Lifecycle, logger *zap.Logger) (Store, error) {
	store, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Using cluster store", zap.String("type", cfg.Storage.Type))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}

// Module provides the persistence dependencies to the fx container
var Module = fx.Options(
	fx.Provide(ProvideStore),
)
