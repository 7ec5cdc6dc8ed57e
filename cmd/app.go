package cmd

import (
	"context"

	"mediagate/cache"
	"mediagate/config"
	"mediagate/db"
	"mediagate/logger"
	"mediagate/storage"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/errs"
	"gorm.io/gorm"
)

// app holds the process-wide resources shared by the commands.
type app struct {
	cfg   *config.Config
	db    *gorm.DB
	store *storage.MinioStore
	redis *redis.Client
	cache cache.Catalog
}

// openDB connects to the relational store only.
func openDB(cfg *config.Config) (*app, error) {
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, db: gdb, cache: cache.Nop{}}, nil
}

// openApp connects to the database, the object store and, when enabled,
// Redis. An unreachable Redis disables caching instead of failing.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	a.store, err = storage.NewMinioStore(cfg)
	if err != nil {
		return nil, errs.Combine(err, a.Close())
	}

	if cfg.RedisEnabled {
		client, err := db.ConnectRedis(ctx, cfg)
		if err != nil {
			logger.Warn("[App] redis unavailable, catalog cache disabled", logger.ErrorField(err))
		} else {
			a.redis = client
			a.cache = cache.NewRedisCatalog(client, cfg.CacheTTL)
		}
	}
	return a, nil
}

func (a *app) Close() error {
	var group errs.Group
	if a.redis != nil {
		group.Add(a.redis.Close())
	}
	group.Add(db.Close(a.db))
	return group.Err()
}
