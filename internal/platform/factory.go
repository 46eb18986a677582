package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/dailynotes/internal/config"
	"github.com/aretw0/dailynotes/pkg/adapters/broadcast"
	"github.com/aretw0/dailynotes/pkg/adapters/fs"
	"github.com/aretw0/dailynotes/pkg/adapters/sqlstore"
	"github.com/aretw0/dailynotes/pkg/core"
)

// App is a fully wired note store together with its notification hub.
type App struct {
	Config  *config.Config
	Backend core.Backend
	Store   *core.Store
	Hub     *broadcast.Hub
	// Policy is the configured default for GetRecentNotes.
	Policy core.RecentPolicy
	Logger *slog.Logger
}

// New builds the backend selected by cfg.Storage, initializes it and
// returns a Store that broadcasts through a fresh Hub.
//
//	app, err := platform.New(ctx, cfg, platform.WithLogger(logger))
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if cfg.Storage.Location == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	policy, err := cfg.Recent.Resolve()
	if err != nil {
		return nil, err
	}

	backend := o.backend
	if backend == nil {
		backend, err = openBackend(cfg.Storage, o)
		if err != nil {
			return nil, err
		}
	}
	if err := backend.Initialize(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("initialize %s storage: %w", cfg.Storage.Kind, err)
	}

	hub := broadcast.NewHub(broadcast.Config{Buffer: cfg.Notify.Buffer, Logger: o.logger})

	storeOpts := []core.Option{
		core.WithNotifier(hub),
		core.WithTargets(cfg.Notify.Targets...),
		core.WithLocation(cfg.Storage.Location),
		core.WithLogger(o.logger),
	}
	if o.clock != nil {
		storeOpts = append(storeOpts, core.WithClock(o.clock))
	}

	return &App{
		Config:  cfg,
		Backend: backend,
		Store:   core.NewStore(backend, core.NewCache(), storeOpts...),
		Hub:     hub,
		Policy:  policy,
		Logger:  o.logger,
	}, nil
}

// OpenBackend constructs, without initializing, the backend named by sc.Kind.
func OpenBackend(sc config.StorageConfig, opts ...Option) (core.Backend, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return openBackend(sc, o)
}

func openBackend(sc config.StorageConfig, o *options) (core.Backend, error) {
	switch sc.Kind {
	case config.StorageFile:
		useTemp := o.forceTemp || (IsDevRun() && !sc.Unsafe)
		dir := ResolveNotesDir(sc.Dir, useTemp)
		if useTemp {
			o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", sc.Dir, "resolved_path", dir)
		}
		logger := o.logger
		return fs.NewRepository(fs.Config{
			Path:     dir,
			Logger:   logger,
			Location: sc.Location,
			ErrorHandler: func(err error) {
				logger.Error("note watcher failed", "error", err)
			},
		}), nil
	case config.StorageSQLite, config.StoragePostgres:
		dialect, err := sqlstore.ParseDialect(sc.Kind)
		if err != nil {
			return nil, err
		}
		return sqlstore.Open(sqlstore.Config{
			Dialect:  dialect,
			DSN:      sc.DSN,
			Location: sc.Location,
			Logger:   o.logger,
		})
	default:
		return nil, fmt.Errorf("unknown storage kind: %s", sc.Kind)
	}
}

// Close releases the hub and the backend.
func (a *App) Close() error {
	return errors.Join(a.Hub.Close(), a.Backend.Close())
}
