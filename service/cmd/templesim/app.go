// cmd/templesim/app.go
package main

import (
	"context"

	"github.com/jason-s-yu/templesim/service/internal/cache"
	"github.com/jason-s-yu/templesim/service/internal/config"
	"github.com/jason-s-yu/templesim/service/internal/experiment"
	"github.com/jason-s-yu/templesim/service/internal/store"
)

// newRunner builds a Runner for cfg. Without a reachable Redis the tallies
// are cached in process. The returned func releases the cache.
func (a *app) newRunner(ctx context.Context, cfg config.Config) (*experiment.Runner, func()) {
	r := &experiment.Runner{
		Trials:  cfg.Trials,
		Workers: cfg.WorkerCount(),
		Seed:    cfg.Seed,
		Log:     a.log,
	}
	release := func() {}

	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.CacheTTL)
		if err == nil {
			r.Cache = rc
			release = func() { rc.Close() }
			return r, release
		}
		a.log.WithError(err).Warn("redis unavailable, caching in memory")
	}
	r.Cache = cache.NewMemory()
	return r, release
}

// openStore opens the result store named by cfg, or returns nil when none
// is configured.
func (a *app) openStore(ctx context.Context, cfg config.Config) (store.ResultStore, error) {
	if cfg.StoreDSN == "" {
		return nil, nil
	}
	return store.Open(ctx, cfg.StoreDSN)
}
