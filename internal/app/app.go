// Package app wires configuration into a ready registry service.
package app

import (
	"context"
	"fmt"

	"github.com/andresuchdata/supplychain-engine/internal/cache"
	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
	"github.com/andresuchdata/supplychain-engine/internal/repository/memory"
	"github.com/andresuchdata/supplychain-engine/internal/repository/postgres"
	"github.com/andresuchdata/supplychain-engine/internal/service"
	"github.com/andresuchdata/supplychain-engine/internal/storage"
	"github.com/rs/zerolog/log"
)

// App holds the registry service and the resources it owns
type App struct {
	Registry *service.Registry
	Store    repository.RegistryStore
	Cache    cache.ReportCache
	Archive  storage.ReportArchive

	closers []func() error
}

// OpenStore returns the configured registry store. The postgres store is
// migrated before use.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.RegistryStore, func() error, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		log.Info().Msg("using in-memory registry store")
		return memory.NewStore(), func() error { return nil }, nil
	case "postgres":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Str("driver", cfg.Database.Driver).Msg("using postgres registry store")
		return postgres.NewStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// New opens the store, cache and archive and builds the registry service.
// Cache and archive failures degrade to no-ops.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{Store: store, closers: []func() error{closeStore}}

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("report cache unavailable, continuing without it")
		reportCache = cache.NewNoopReportCache()
	}
	a.Cache = reportCache
	a.closers = append(a.closers, reportCache.Close)

	archive, err := storage.NewReportArchive(ctx, cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("report archive unavailable, continuing without it")
		archive = storage.NewNoopArchive()
	}
	a.Archive = archive

	reg, err := service.NewRegistry(cfg.Engine, service.Dependencies{
		Store:   store,
		Cache:   reportCache,
		Archive: archive,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Registry = reg

	return a, nil
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
