package server

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andrei-cloud/go_pool/internal/config"
	"github.com/andrei-cloud/go_pool/internal/entity"
	"github.com/andrei-cloud/go_pool/internal/host"
	"github.com/andrei-cloud/go_pool/internal/pool"
	"github.com/andrei-cloud/go_pool/internal/preset"
)

// presetTimeout bounds how long a scope build waits for shared presets.
const presetTimeout = 5 * time.Second

// NewRedisStore returns the shared preset store from cfg, or nil when redis is not configured.
func NewRedisStore(cfg *config.Config) *preset.RedisStore {
	if cfg.Redis.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return preset.NewRedisStore(rdb, preset.WithKeyPrefix(cfg.Redis.Prefix))
}

// NewFactory returns a host factory that builds a manager from cfg. Presets are
// read again on every build, so a scope reload picks up edited preset files.
func NewFactory(
	cfg *config.Config,
	catalog *entity.Catalog,
	store *preset.RedisStore,
	observer pool.Observer,
) host.Factory {
	return func() (*pool.Manager, error) {
		defs, err := preset.Definitions(cfg.Pool.Categories, catalog)
		if err != nil {
			return nil, err
		}
		registry := pool.NewRegistry()
		if err := registry.Merge(defs...); err != nil {
			return nil, err
		}

		opts := []pool.Option{
			pool.WithPolicy(cfg.Policy()),
			pool.WithLoader(catalog),
		}
		if cfg.Pool.UsePreset {
			ctx, cancel := context.WithTimeout(context.Background(), presetTimeout)
			defer cancel()
			presets, err := preset.Collect(ctx, cfg.Pool.Presets, cfg.Pool.SharedPresets, store, catalog)
			if err != nil {
				return nil, err
			}
			opts = append(opts, pool.WithPresets(presets...))
		}
		if observer != nil {
			opts = append(opts, pool.WithObserver(observer))
		}

		return pool.NewManager(registry, opts...), nil
	}
}
