package main

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/diewo77/kinz/internal/cache"
	"github.com/diewo77/kinz/internal/config"
	"github.com/diewo77/kinz/internal/db"
	"github.com/diewo77/kinz/internal/events"
	"github.com/diewo77/kinz/internal/handlers"
	"github.com/diewo77/kinz/internal/logger"
	"github.com/diewo77/kinz/internal/remote"
	"github.com/diewo77/kinz/internal/store"
	"github.com/diewo77/kinz/internal/syncer"
)

// Replaced in tests.
var (
	openMirror    = remote.OpenPostgres
	migrateMirror = db.MigrateRemote
)

// runtime is everything a command needs: the cache, the store and, when
// configured, the remote mirror, its sync controller and the change feed.
type runtime struct {
	cache   *cache.Cache
	backend *remote.PostgresBackend
	client  *remote.Client
	store   *store.Store
	syncer  *syncer.Controller
	nats    *nats.Conn
	detach  func()
}

func openRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	log := logger.WithComponent("runtime")
	rt := &runtime{}

	c, err := cache.Open(cfg.Cache.Path, cfg.App.DBDebug)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	rt.cache = c

	opts := store.Options{Cache: c}
	if cfg.Remote.Enabled {
		rt.openRemote(ctx, cfg)
	}
	if rt.client != nil {
		opts.Mirror = rt.client
	} else {
		log.Info().Msg("local-only mode")
	}

	rt.store = store.New(opts)
	if rt.client != nil {
		rt.syncer = syncer.New(rt.client, rt.store, nil)
	}

	if cfg.Events.NATSURL != "" {
		nc, err := events.Connect(cfg.Events.NATSURL)
		if err != nil {
			// The feed is optional; the store works without it.
			log.Warn().Err(err).Str("url", cfg.Events.NATSURL).Msg("change feed disabled")
		} else {
			rt.nats = nc
			rt.detach = events.NewPublisher(nc, cfg.Events.Subject, logger.WithComponent("events")).Attach(rt.store)
		}
	}
	return rt, nil
}

// openRemote migrates and connects the mirror. Any failure is logged and
// leaves the runtime local-only.
func (rt *runtime) openRemote(ctx context.Context, cfg *config.Config) {
	log := logger.WithComponent("runtime")
	if cfg.App.Migrations {
		if err := migrateMirror(cfg.Remote.URL()); err != nil {
			log.Warn().Err(err).Msg("remote migrations failed")
		}
	}
	b, err := openMirror(ctx, cfg.Remote.DSN(), cfg.Remote.URL(), cfg.App.DBDebug)
	if err != nil {
		log.Warn().Err(err).Str("host", cfg.Remote.Host).Msg("remote mirror unreachable")
		return
	}
	rt.backend = b
	rt.client = remote.NewClient(b, nil)
	log.Info().Str("host", cfg.Remote.Host).Str("db", cfg.Remote.DBName).Msg("remote mirror enabled")
}

// syncerOrNil keeps a nil controller from turning into a non-nil interface.
func (rt *runtime) syncerOrNil() handlers.Syncer {
	if rt.syncer == nil {
		return nil
	}
	return rt.syncer
}

func (rt *runtime) Close() {
	log := logger.WithComponent("runtime")
	if rt.syncer != nil {
		rt.syncer.Close()
	}
	if rt.detach != nil {
		rt.detach()
	}
	if rt.nats != nil {
		if err := rt.nats.Drain(); err != nil {
			log.Warn().Err(err).Msg("nats drain")
		}
	}
	if rt.backend != nil {
		if err := rt.backend.Close(); err != nil {
			log.Warn().Err(err).Msg("close remote")
		}
	}
	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil {
			log.Warn().Err(err).Msg("close cache")
		}
	}
}
