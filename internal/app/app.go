// internal/app/app.go
//
// Process bootstrap shared by cmd/web and cmd/coursectl.
//
// Context
// -------
// Boot order mirrors the dependency graph:
//
//  1. Vault client, only when VAULT_ADDR is set.
//  2. Configuration (koanf layers plus `vault:` secrets).
//  3. File logger.
//  4. Control-plane DB pool.
//  5. Course repository, optionally behind the host lookup cache.
//  6. Backend matcher and Resolver.
//  7. Session store.
//
// Close releases everything in reverse order.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/coursehost/internal/config"
	"github.com/yanizio/coursehost/internal/course"
	"github.com/yanizio/coursehost/internal/database"
	"github.com/yanizio/coursehost/internal/logger"
	"github.com/yanizio/coursehost/internal/session"
	"github.com/yanizio/coursehost/internal/tenant"
	"github.com/yanizio/coursehost/internal/vault"
)

// Options tunes New.
type Options struct {
	LogLevel string
	Tee      bool // mirror logs to stdout
	Sessions bool // open the session store; the CLI does not need one
}

// App bundles the long-lived collaborators.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *sqlx.DB
	Courses  *course.Repository
	Cache    *tenant.Cache // nil when tenant.cache_ttl is 0
	Resolver *tenant.Resolver
	Sessions session.Store // nil unless Options.Sessions

	closers []func() error
}

// New boots the application.  On error everything opened so far is closed.
func New(ctx context.Context, opts Options) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	var secrets config.SecretFunc
	var vcli *vault.Client
	if os.Getenv("VAULT_ADDR") != "" {
		vcli, err = vault.New(nil)
		if err != nil {
			return nil, err
		}
		secrets = vcli.Resolve
	}

	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a.Config = cfg

	sugar, err := logger.New(cfg.Paths.Root, logger.Options{Level: opts.LogLevel, Tee: opts.Tee})
	if err != nil {
		return nil, fmt.Errorf("start logger: %w", err)
	}
	a.Log = sugar.Desugar()
	a.closers = append(a.closers, func() error { _ = a.Log.Sync(); return nil })

	dbOpts := database.DefaultOptions
	dbOpts.MaxOpenConns = cfg.Database.MaxOpen
	dbOpts.MaxIdleConns = cfg.Database.MaxIdle
	a.DB, err = database.OpenWithOptions(ctx, cfg.Database.DSN, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("connect control-plane DB: %w", err)
	}
	a.closers = append(a.closers, a.DB.Close)
	a.Log.Info("control-plane DB online")

	a.Courses = course.NewRepository(a.DB)
	var store tenant.Store = a.Courses
	if cfg.Tenant.CacheTTL > 0 {
		a.Cache = tenant.NewCache(a.Courses, cfg.Tenant.CacheTTL, cfg.Tenant.CacheMaxAge, cfg.Tenant.CacheMaxEntries, a.Log)
		a.closers = append(a.closers, func() error { a.Cache.Close(); return nil })
		store = a.Cache
	}

	backend, err := tenant.NewBackendMatcher(cfg.Site.BackendMatch, cfg.Site.MainHost, cfg.Site.MainHosts)
	if err != nil {
		return nil, err
	}
	a.Resolver = tenant.NewResolver(store, backend,
		tenant.WithLogger(a.Log),
		tenant.WithRegisterFunc(a.registerCourse),
	)

	if opts.Sessions {
		st, closeFn, err := session.NewStore(ctx, session.Options{
			Driver:   cfg.Session.Driver,
			RedisURL: cfg.Session.RedisURL,
			Prefix:   cfg.Session.Prefix,
			TTL:      cfg.Session.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		a.Sessions = st
		a.closers = append(a.closers, closeFn)
	}

	if vcli != nil {
		vctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		go vcli.KeepTokenAlive(vctx)
		a.closers = append(a.closers, func() error { cancel(); return nil })
	}

	a.Log.Info("coursehost ready",
		zap.String("backend_match", cfg.Site.BackendMatch),
		zap.Bool("host_cache", a.Cache != nil),
		zap.String("session_driver", cfg.Session.Driver))
	return a, nil
}

// Close releases resources in reverse boot order.  A nil App is a no-op.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// registerCourse binds course-scoped services after Contextualize(…, true).
// For now that means loading the course's domain list so operators can see
// which hosts the session now stands in for.
func (a *App) registerCourse(ctx context.Context, c *course.Course) error {
	domains, err := a.Courses.Domains(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("load domains for course %d: %w", c.ID, err)
	}
	hosts := make([]string, 0, len(domains))
	for _, d := range domains {
		hosts = append(hosts, d.Host)
	}
	a.Log.Info("course services registered",
		zap.Uint64("course_id", c.ID),
		zap.String("provider", c.Provider),
		zap.Strings("hosts", hosts))
	return nil
}
