package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/vitrine-lab/vitrine/internal/analytics"
	corecfg "github.com/vitrine-lab/vitrine/internal/core/config"
	"github.com/vitrine-lab/vitrine/internal/core/storage"
	"github.com/vitrine-lab/vitrine/internal/core/storage/breaker"
	"github.com/vitrine-lab/vitrine/internal/core/storage/clickhouse"
	"github.com/vitrine-lab/vitrine/internal/core/storage/memory"
	"github.com/vitrine-lab/vitrine/internal/core/storage/postgres"
	"github.com/vitrine-lab/vitrine/internal/forward"
	"github.com/vitrine-lab/vitrine/internal/identity"
	"github.com/vitrine-lab/vitrine/internal/ingestion"
	"github.com/vitrine-lab/vitrine/internal/localstore"
	"github.com/vitrine-lab/vitrine/internal/metrics"
	"github.com/vitrine-lab/vitrine/internal/migrations"
	"github.com/vitrine-lab/vitrine/internal/projection"
	"github.com/vitrine-lab/vitrine/internal/server"
)

func main() {
	configPath := flag.String("config", "vitrine.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))
	slog.Info("Loaded config",
		"database", cfg.Database.Type,
		"localstore", cfg.LocalStore.Type,
		"clickhouse", cfg.ClickHouse.Enabled,
		"forward", cfg.Forward.Enabled)

	checks := make(map[string]server.HealthChecker)

	// 2. Initialize Shared Store
	var (
		events    storage.EventStore
		summaries storage.SummaryStore
	)
	switch cfg.Database.Type {
	case "postgres":
		db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}

		// 2.1. Run Database Migrations
		if err := migrations.RunMigrations(db, cfg.Database.AutoMigrate); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}

		dbAdapter, err := postgres.NewAdapter(db)
		if err != nil {
			slog.Error("Failed to initialize event store", "error", err)
			os.Exit(1)
		}
		defer dbAdapter.Close() // closes db

		events = dbAdapter
		summaries = postgres.NewSummaryAdapter(db)
		checks["database"] = pinger(db)
	default:
		slog.Warn("Using in-memory shared store; analytics are lost on restart")
		store := memory.NewStore()
		events = store
		summaries = store
	}

	// 2.2. Guard the shared store with a circuit breaker
	if cfg.Breaker.Enabled {
		cb := breaker.New(breaker.Config{
			Name:             "shared-store",
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		}, func(name string, _, to gobreaker.State) {
			metrics.BreakerTransitions.WithLabelValues(name, to.String()).Inc()
		})
		events = breaker.WrapEventStore(events, cb)
		summaries = breaker.WrapSummaryStore(summaries, cb)
	}

	// 2.3. Optional ClickHouse mirror
	var mirror storage.EventMirror
	if cfg.ClickHouse.Enabled {
		chMirror, err := clickhouse.Open(clickhouse.Options{
			Addr:        []string{cfg.ClickHouse.Addr},
			Database:    cfg.ClickHouse.Database,
			Username:    cfg.ClickHouse.Username,
			Password:    cfg.ClickHouse.Password,
			DialTimeout: cfg.ClickHouse.DialTimeout,
		})
		if err != nil {
			slog.Error("Failed to initialize ClickHouse mirror", "error", err)
			os.Exit(1)
		}
		defer chMirror.Close()
		mirror = chMirror
		checks["clickhouse"] = chMirror
	}

	// 3. Initialize Device Storage
	var deviceStore localstore.Store
	switch cfg.LocalStore.Type {
	case "redis":
		redisStore, err := localstore.NewRedis(localstore.RedisOptions{
			URL:            cfg.LocalStore.RedisURL,
			Prefix:         cfg.LocalStore.Prefix,
			TTL:            cfg.LocalStore.TTL,
			PoolSize:       cfg.LocalStore.PoolSize,
			ConnectTimeout: cfg.LocalStore.ConnectTimeout,
		})
		if err != nil {
			slog.Error("Failed to initialize device storage", "error", err)
			os.Exit(1)
		}
		deviceStore = redisStore
		checks["localstore"] = redisStore
	default:
		deviceStore = localstore.NewMemory()
	}
	defer deviceStore.Close()

	// 4. Initialize Identity
	tokens, err := identity.NewTokenService(identity.TokenConfig{
		Secret:         cfg.Auth.Secret,
		Issuer:         cfg.Auth.Issuer,
		TTL:            cfg.Auth.TokenTTL,
		AllowAnonymous: cfg.Auth.AllowAnonymous,
	})
	if err != nil {
		slog.Error("Failed to initialize token service", "error", err)
		os.Exit(1)
	}

	// 5. Optional tag forwarding
	var forwarder analytics.TagForwarder
	if cfg.Forward.Enabled {
		nc, err := forward.Connect(cfg.Forward.NATSURL)
		if err != nil {
			slog.Error("Failed to connect tag forwarder", "error", err)
			os.Exit(1)
		}
		defer nc.Drain()
		forwarder = forward.New(nc, cfg.Forward.Subject)
		slog.Info("Tag forwarding enabled", "url", cfg.Forward.NATSURL, "subject", cfg.Forward.Subject)
	}

	// 6. Initialize Pipelines
	registry := analytics.NewRegistry(analytics.SharedDeps{
		Store:     deviceStore,
		Auth:      tokens,
		Events:    events,
		Summaries: summaries,
		Mirror:    mirror,
		Forwarder: forwarder,
		Options: analytics.Options{
			WriteTimeout:     cfg.Database.WriteTimeout,
			DrainLockTTL:     cfg.Analytics.DrainLockTTL,
			TopProductsLimit: cfg.Analytics.TopProducts,
			RecentLimit:      cfg.Analytics.RecentEvents,
		},
	})
	janitor := analytics.NewJanitor(registry, cfg.Analytics.SweepInterval, cfg.Analytics.IdleTimeout)

	// 7. Initialize Ingestion and Projection
	ingestionSvc := ingestion.NewService(registry, tokens, cfg.Server.MaxBodySizeMB)
	projectionSvc := projection.NewService(
		analytics.NewAggregators(summaries, events, nil, cfg.Analytics.TopProducts, cfg.Analytics.RecentEvents),
		registry,
		tokens,
	)

	// 8. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode, checks)
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)

	// 9. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := janitor.Start(ctx); err != nil {
			slog.Error("Janitor stopped with error", "error", err)
		}
	}()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func newLogger(cfg corecfg.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func pinger(db *sql.DB) server.HealthChecker {
	return server.PingFunc(db.PingContext)
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
