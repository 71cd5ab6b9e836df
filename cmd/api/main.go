package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edge-authorizer/internal/audit"
	"edge-authorizer/internal/auth"
	"edge-authorizer/internal/authorizer"
	"edge-authorizer/internal/config"
	"edge-authorizer/internal/gateway"
	"edge-authorizer/internal/httpapi"
	"edge-authorizer/internal/invocation"
	"edge-authorizer/internal/target"
	"edge-authorizer/pkg/logger"
	"edge-authorizer/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, closeStore, err := openStore(rootCtx, cfg)
	if err != nil {
		log.Error("audit store init failed", "err", err, "store", cfg.Audit.Store)
		os.Exit(1)
	}
	defer closeStore()

	tokens, err := auth.NewManager(cfg.Context)
	if err != nil {
		log.Error("context token init failed", "err", err)
		os.Exit(1)
	}

	recorder := audit.NewRecorder(store,
		audit.WithLogger(log),
		audit.WithMetrics(audit.NewMetrics(prometheus.DefaultRegisterer)),
		audit.WithWriteTimeout(cfg.Audit.WriteTimeout),
	)
	engine := authorizer.NewEngine(recorder)
	processor := target.NewProcessor(recorder, cfg.Audit.Table)

	identity := func(name string) invocation.Identity {
		return invocation.Identity{
			FunctionName:    name,
			FunctionVersion: cfg.Function.Version,
			MemoryLimitMB:   cfg.Function.MemoryMB,
		}
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		Handlers: httpapi.Handlers{
			Authorizer: engine,
			Target:     processor,
			Tokens:     tokens,
		},
		Engine:       engine,
		Tokens:       tokens,
		AuthorizerID: identity(cfg.Function.AuthorizerName),
		TargetID:     identity(cfg.Function.TargetName),
		Resource:     gateway.MethodARN(cfg.Audit.Region, cfg.Gateway.Stage),
		Metrics:      promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "audit_store", cfg.Audit.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Redis expires keys on its own; the other stores need a sweeper.
	if purger, ok := store.(audit.Purger); ok {
		sweeper := &audit.Sweeper{Purger: purger, Interval: cfg.Audit.PurgeInterval, Log: log}
		g.Go(func() error { return sweeper.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("api stopped with error", "err", err)
		stop()
		closeStore()
		os.Exit(1)
	}
}

// openStore builds the configured audit store and returns its closer.
func openStore(ctx context.Context, cfg config.Config) (audit.Store, func(), error) {
	switch cfg.Audit.Store {
	case config.StoreRedis:
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			return nil, nil, err
		}
		return audit.NewRedisStore(rdb, cfg.Audit.Table, cfg.Audit.Region), func() { _ = rdb.Close() }, nil

	case config.StorePostgres:
		db, err := utils.OpenPostgres(ctx, utils.PostgresConfig{DSN: cfg.PostgresDSN()})
		if err != nil {
			return nil, nil, err
		}
		store := audit.NewPostgresStore(db, cfg.Audit.Table, cfg.Audit.Region)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil

	case config.StoreMemory:
		return audit.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown audit store %q", cfg.Audit.Store)
}
