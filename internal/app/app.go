// Package app builds the component graph shared by the CLI commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"medcore/m/domain"
	"medcore/m/internal/backup"
	"medcore/m/internal/cache"
	"medcore/m/internal/commission"
	"medcore/m/internal/config"
	"medcore/m/internal/database"
	"medcore/m/internal/hospital"
	"medcore/m/internal/ledger"
	"medcore/m/internal/logger"
	"medcore/m/internal/migrations"
	"medcore/m/internal/reconcile"
	"medcore/m/internal/registry"
	"medcore/m/internal/remote"
	"medcore/m/internal/repository"
	"medcore/m/internal/seed"
	"medcore/m/internal/trash"
)

// probeTTL is how long a connectivity answer is trusted.
const probeTTL = 30 * time.Second

type App struct {
	Config      config.Config
	Cache       *cache.Store
	Adapter     *remote.Adapter
	Repos       *repository.Set
	Hospital    *hospital.Service
	Commissions *commission.Engine
	Ledger      *ledger.Ledger
	Payments    *reconcile.Reconciler
	Trash       *trash.Bin
	Backup      *backup.Service
	Registry    *registry.Registry

	db *sqlx.DB
}

// Options overrides pieces of the graph, mostly for tests.
type Options struct {
	Backend      cache.Backend
	Client       remote.Client
	Connectivity remote.Connectivity
	Clock        func() time.Time
	Logger       *zerolog.Logger
}

// New opens the cache, seeds it on first start and loads every collection.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}
	component := logger.WithComponent
	if opts.Logger != nil {
		base := *opts.Logger
		component = func(name string) zerolog.Logger { return base.With().Str("component", name).Logger() }
	}

	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = a.openBackend()
		if err != nil {
			return nil, err
		}
	}
	a.Cache = cache.New(backend)
	a.Hospital = hospital.NewService(a.Cache, component("hospital"))

	profile := hospital.Default()
	if cfg.HospitalProfile != "" {
		p, err := hospital.LoadProfile(cfg.HospitalProfile)
		if err != nil {
			a.Close()
			return nil, err
		}
		profile = p
	}
	if _, err := seed.NewSeeder(a.Cache, a.Hospital, profile, component("seed")).Run(); err != nil {
		a.Close()
		return nil, err
	}
	if cfg.HospitalProfile != "" && a.Hospital.Differs(profile) {
		hlog := component("hospital")
		hlog.Warn().Str("profile", cfg.HospitalProfile).
			Msg("hospital profile not applied, stored settings win; run `medcore hospital apply` to replace them")
	}

	client, conn := opts.Client, opts.Connectivity
	if client == nil && cfg.RemoteEnabled() {
		client = remote.NewHTTPClient(cfg.RemoteURL, cfg.SyncSecret)
	}
	if conn == nil {
		switch {
		case cfg.Offline || client == nil:
			conn = remote.Static(false)
		case opts.Client != nil:
			conn = remote.Static(true)
		default:
			conn = remote.NewHealthProbe(cfg.RemoteURL, cfg.RemoteTimeout, probeTTL)
		}
	}
	a.Adapter = remote.NewAdapter(a.Cache, remote.Options{
		Client:        client,
		Connectivity:  conn,
		Timeout:       cfg.RemoteTimeout,
		Concurrency:   cfg.SyncConcurrency,
		OutboxEnabled: cfg.OutboxEnabled,
		Logger:        component("sync"),
	})

	a.Repos = repository.NewSet(a.Adapter)
	if err := a.Repos.LoadAll(ctx, cfg.SyncConcurrency); err != nil {
		a.Close()
		return nil, err
	}

	a.Commissions = commission.NewEngine(a.Repos, component("commission"))
	a.Ledger = ledger.New(a.Repos, a.Commissions, ledger.Options{
		Numbering: a.Hospital.Numbering,
		Clock:     opts.Clock,
		Logger:    component("ledger"),
	})
	a.Payments = reconcile.New(a.Repos, a.Commissions, opts.Clock, component("reconcile"))
	a.Trash = trash.New(a.Repos, opts.Clock, component("trash"))
	a.Backup = backup.New(a.Repos, a.Hospital.Get, opts.Clock, component("backup"))
	a.Registry = registry.New(a.Repos, opts.Clock, component("registry"))
	return a, nil
}

func (a *App) openBackend() (cache.Backend, error) {
	switch a.Config.CacheBackend {
	case "memory":
		return cache.NewMemoryBackend(), nil
	case "file":
		return cache.NewFileBackend(a.Config.CacheDir), nil
	case "sqlite":
		db, err := database.Connect("sqlite", a.Config.CacheDSN)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunCache(db); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		return cache.NewSQLBackend(db), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", a.Config.CacheBackend)
}

// Raw returns the type-erased repository for a collection name.
func (a *App) Raw(name string) (repository.Raw, error) {
	entity, err := domain.ParseEntity(name)
	if err != nil {
		return nil, err
	}
	return a.Repos.Raw(entity)
}

// Close waits for background remote writes and releases the cache database.
func (a *App) Close() error {
	if a.Adapter != nil {
		a.Adapter.Wait()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
