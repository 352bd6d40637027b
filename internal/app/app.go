// Package app wires the stores, token registry, flows and HTTP router from a
// config.Config.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/roster/internal/auth"
	"github.com/geocoder89/roster/internal/config"
	"github.com/geocoder89/roster/internal/db"
	apphttp "github.com/geocoder89/roster/internal/http"
	"github.com/geocoder89/roster/internal/http/handlers"
	"github.com/geocoder89/roster/internal/observability"
	"github.com/geocoder89/roster/internal/repo/memory"
	"github.com/geocoder89/roster/internal/repo/postgres"
	"github.com/geocoder89/roster/internal/service"
	"github.com/geocoder89/roster/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	Router *gin.Engine
	Users  service.UserStore
	Groups service.GroupStore
	Tokens *auth.TokenService

	closers []func()
}

// Build opens the configured backends, applies migrations when asked to,
// seeds the admin account and assembles the router. Close releases whatever
// Build opened, also when Build itself fails half way.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (a *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a = &App{}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	checks := map[string]handlers.Check{}

	var pool *pgxpool.Pool

	switch cfg.StoreDriver {
	case config.DriverMemory:
		store := memory.NewStore()
		a.Users, a.Groups = store.Users(), store.Groups()
		checks["store"] = store.Ping

	case config.DriverPostgres:
		pool, err = db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if cfg.MigrateOnStart {
			if err = db.Migrate(ctx, pool, db.Up); err != nil {
				return nil, err
			}
		}

		a.Users = postgres.NewUsersRepo(pool, prom)
		a.Groups = postgres.NewGroupsRepo(pool, prom)
		checks["store"] = pool.Ping
	}

	var sessions auth.SessionStore

	switch cfg.TokenStore {
	case config.DriverMemory:
		sessions = session.NewMemoryStore()

	case config.DriverRedis:
		rs := session.NewRedisStore(session.NewRedisClient(session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}))
		a.closers = append(a.closers, func() { _ = rs.Close() })

		if err = rs.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		sessions = rs
		checks["tokens"] = rs.Ping

	case config.DriverPostgres:
		sessions = postgres.NewTokensRepo(pool, prom)
	}

	a.Tokens = auth.NewTokenService(auth.NewManager(cfg.JWTSecret, cfg.TokenTTL()), sessions, a.Users)

	if err = db.EnsureAdmin(ctx, a.Users, cfg.AdminName, cfg.AdminPassword, log); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if cfg.SeedDemo {
		if err = db.SeedDemo(ctx, a.Users, a.Groups, log); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	a.Router = apphttp.NewRouter(apphttp.RouterConfig{
		Env:            cfg.Env,
		ServiceName:    cfg.OTELServiceName,
		TracingEnabled: cfg.TracingEnabled,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthRateLimit:  cfg.AuthRateLimit,
		WriteRateLimit: cfg.WriteRateLimit,
		AuthRateWindow: cfg.AuthRateWindow(),
		MaxBodyBytes:   cfg.MaxBodyBytes,
	}, apphttp.Deps{
		Log:      log,
		Prom:     prom,
		Gatherer: reg,
		Auth:     service.NewAuthService(a.Users, a.Tokens, log),
		Users:    service.NewUserService(a.Users, log),
		Groups:   service.NewGroupService(a.Groups, log),
		Tokens:   a.Tokens,
		Checks:   checks,
	})

	return a, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
