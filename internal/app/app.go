// Package app assembles the store, BGG client, reconciler, sync service,
// game nights and event hub from a Config. Every binary builds its
// dependencies through New.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"gamenight/internal/bgg"
	"gamenight/internal/collection"
	"gamenight/internal/games"
	"gamenight/internal/metrics"
	"gamenight/internal/nights"
	"gamenight/internal/store"
	synchub "gamenight/internal/sync"
	"gamenight/pkg/database"
	"gamenight/pkg/utils"
)

type App struct {
	Config      *utils.Config
	Log         *zap.Logger
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics
	Store       store.Store
	Client      *bgg.Client
	Games       *games.Reconciler
	Collections *collection.Service
	Nights      *nights.Service
	Hub         *synchub.Hub

	ping    func(context.Context) error
	closers []func() error
}

func New(ctx context.Context, cfg *utils.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Metrics:  metrics.New(reg),
		Hub:      synchub.NewHub(log.Named("hub")),
		ping:     func(context.Context) error { return nil },
	}
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	a.Client = bgg.NewClient(bgg.Config{
		BaseURL:    cfg.BGG.BaseURL,
		Token:      cfg.BGG.Token,
		RatePerSec: cfg.BGG.RatePerSec,
		Timeout:    cfg.BGG.Timeout,
		Logger:     log.Named("bgg"),
		Metrics:    a.Metrics,
	})
	a.Games = games.NewReconciler(a.Store, a.Client, games.Options{
		Logger:         log.Named("games"),
		Metrics:        a.Metrics,
		Events:         a.Hub,
		ThingBatchSize: cfg.BGG.ThingBatch,
	})
	a.Collections = collection.NewService(a.Store, a.Client, a.Games, collection.Options{
		Logger:  log.Named("collection"),
		Metrics: a.Metrics,
		Events:  a.Hub,
	})
	a.Nights = nights.NewService(a.Store, a.Games, nights.Options{
		Logger: log.Named("nights"),
		Events: a.Hub,
	})
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.Store.Backend {
	case utils.StoreMemory:
		a.Store = store.NewMemoryStore()
	case utils.StoreSQLite:
		db, err := database.Open(database.Config{Path: a.Config.Store.DBPath})
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return fmt.Errorf("db migrate: %w", err)
		}
		a.Store = store.NewSQLiteStore(db)
		a.ping = db.PingContext
		a.closers = append(a.closers, db.Close)
	case utils.StoreFirestore:
		client, err := store.NewFirestoreClient(ctx, a.Config.Store.FirestoreProject)
		if err != nil {
			return err
		}
		a.Store = store.NewFirestoreStore(client)
		a.closers = append(a.closers, client.Close)
	default:
		return fmt.Errorf("unknown store backend %q", a.Config.Store.Backend)
	}
	a.Log.Info("store ready", zap.String("backend", a.Config.Store.Backend))
	return nil
}

// Ping checks the store connection where the backend supports it.
func (a *App) Ping(ctx context.Context) error {
	return a.ping(ctx)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
