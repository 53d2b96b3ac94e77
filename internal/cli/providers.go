package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ppiankov/wildaware/internal/cache"
	"github.com/ppiankov/wildaware/internal/catalog"
	"github.com/ppiankov/wildaware/internal/model"
	"github.com/ppiankov/wildaware/internal/util"
	"github.com/ppiankov/wildaware/internal/worker"
)

// buildCatalogProvider returns the configured species source. File catalogs
// are watched for changes until ctx ends when cfg.Catalog.Watch is set.
func buildCatalogProvider(ctx context.Context, cfg *model.Config, log *zap.Logger) (catalog.Provider, error) {
	switch cfg.Catalog.Source {
	case "", "static":
		return catalog.NewStatic(nil), nil

	case "file":
		if cfg.Catalog.Path == "" {
			return nil, fmt.Errorf("catalog.path is required for a file catalog")
		}
		fp, err := catalog.NewFileProvider(cfg.Catalog.Path, log)
		if err != nil {
			return nil, err
		}
		if cfg.Catalog.Watch {
			go func() {
				if err := fp.Watch(ctx); err != nil && ctx.Err() == nil {
					log.Warn("Catalog watch stopped", zap.String("path", cfg.Catalog.Path), zap.Error(err))
				}
			}()
		}
		return fp, nil

	case "remote":
		c, err := cache.New(cfg.Cache, cfg.Catalog.CacheTTL)
		if err != nil {
			return nil, err
		}
		if rc, ok := c.(*cache.RedisCache); ok {
			if err := rc.Ping(ctx); err != nil {
				log.Warn("Redis cache unreachable, catalog documents will be fetched uncached",
					zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
			}
		}
		ua := cfg.Catalog.UserAgent
		return catalog.NewRemoteProvider(catalog.RemoteOptions{
			BaseURL:   cfg.Catalog.BaseURL,
			UserAgent: ua,
			Timeout:   cfg.Catalog.Timeout,
			CacheTTL:  cfg.Catalog.CacheTTL,
			Cache:     c,
			Limiter:   worker.NewLimiter(1, 3),
			Robots:    util.NewRobotsChecker(ua, cfg.Catalog.Timeout, cfg.Catalog.CacheTTL),
			Logger:    log,

			HTTPProxy:  cfg.Proxy.HTTPProxy,
			HTTPSProxy: cfg.Proxy.HTTPSProxy,
			NoProxy:    cfg.Proxy.NoProxy,
		})

	default:
		return nil, fmt.Errorf("unknown catalog source: %s (supported: static, file, remote)", cfg.Catalog.Source)
	}
}

// closeProvider releases provider resources such as a Redis connection pool
func closeProvider(p catalog.Provider, log *zap.Logger) {
	closer, ok := p.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		log.Warn("Failed to close catalog provider", zap.Error(err))
	}
}
