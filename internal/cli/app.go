package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/kawaiicounter/internal/config"
	"github.com/matzehuels/kawaiicounter/pkg/background"
	"github.com/matzehuels/kawaiicounter/pkg/cache"
	"github.com/matzehuels/kawaiicounter/pkg/counter"
	"github.com/matzehuels/kawaiicounter/pkg/counter/snapshot"
	"github.com/matzehuels/kawaiicounter/pkg/service"
)

// renderCachePrefix namespaces rasterized badges in a shared redis database.
const renderCachePrefix = "kawaii:render:"

// app is the set of components a command works against, built from config.
type app struct {
	cfg   config.Config
	store *counter.Store
	svc   *service.Service

	closers []func() error
}

// openApp connects the configured store, background directory and render
// cache, and loads the counter snapshot. Close must be called when done.
func (c *CLI) openApp(ctx context.Context, cfg config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var rdb *redis.Client
	if cfg.Store.Backend == config.StoreRedis || cfg.Cache.Backend == config.CacheRedis {
		rdb, err = dialRedis(ctx, cfg.Store.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
	}

	persister, err := openPersister(ctx, cfg.Store, rdb)
	if err != nil {
		return nil, err
	}

	a.store = counter.Open(ctx, persister, counter.WithLogger(c.Logger))
	// The store closes its persister; run it before the shared redis client.
	a.closers = append([]func() error{a.store.Close}, a.closers...)

	blobs, err := background.NewFileBlobStore(cfg.Backgrounds.Dir)
	if err != nil {
		return nil, err
	}

	rc, err := openCache(cfg.Cache, rdb)
	if err != nil {
		return nil, err
	}
	a.closers = append([]func() error{rc.Close}, a.closers...)

	a.svc = service.New(a.store, blobs, rc, c.Logger,
		service.WithFit(cfg.Fit()),
		service.WithCacheTTL(cfg.Cache.TTL),
	)

	c.Logger.Debug("app ready", "counters", a.store.Len(), "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
	return a, nil
}

// Close releases every opened component, most recent first.
func (a *app) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func dialRedis(ctx context.Context, rc config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", rc.Addr, err)
	}
	return rdb, nil
}

// openPersister returns nil for the memory backend, which keeps counters for
// the lifetime of the process only.
func openPersister(ctx context.Context, sc config.StoreConfig, rdb *redis.Client) (counter.Persister, error) {
	switch sc.Backend {
	case config.StoreFile:
		return snapshot.NewFile(sc.Path)
	case config.StoreRedis:
		return snapshot.NewRedis(rdb, snapshot.WithRedisKey(sc.Redis.Key)), nil
	case config.StoreMongo:
		return snapshot.DialMongo(ctx, sc.Mongo.URI, sc.Mongo.Database, sc.Mongo.Collection)
	case config.StoreMemory:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
}

func openCache(cc config.CacheConfig, rdb *redis.Client) (cache.Cache, error) {
	switch cc.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(cc.MaxCost)
	case config.CacheFile:
		return cache.NewFileCache(cc.Dir)
	case config.CacheRedis:
		return cache.NewRedisCache(rdb, renderCachePrefix), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cc.Backend)
}
