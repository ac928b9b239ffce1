package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/analytics"
	"github.com/mrleolava/job-search-command-center/internal/cache"
	redcache "github.com/mrleolava/job-search-command-center/internal/cache/redis"
	"github.com/mrleolava/job-search-command-center/internal/config"
	"github.com/mrleolava/job-search-command-center/internal/detect"
	"github.com/mrleolava/job-search-command-center/internal/messaging"
	"github.com/mrleolava/job-search-command-center/internal/provider"
	"github.com/mrleolava/job-search-command-center/internal/reconcile"
	"github.com/mrleolava/job-search-command-center/internal/scheduler"
	"github.com/mrleolava/job-search-command-center/internal/server"
	"github.com/mrleolava/job-search-command-center/internal/store"
	"github.com/mrleolava/job-search-command-center/internal/telemetry"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return zap.NewProduction()
}

func newCache(cfg *config.Config) cache.Cache {
	return redcache.New(cache.Options{
		DefaultTTL:    cfg.CacheTTL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
}

func newPool(cfg *config.Config) (*pgxpool.Pool, error) {
	return store.NewPool(context.Background(), cfg.DatabaseURL)
}

func newRecorder(cfg *config.Config, logger *zap.Logger) (analytics.Recorder, error) {
	return analytics.New(context.Background(), cfg, logger)
}

func newDetector(adapters []provider.Adapter, logger *zap.Logger, c cache.Cache, cfg *config.Config) *detect.Detector {
	return detect.New(adapters, logger, c, cfg.DetectTimeout)
}

func newEngine(st *store.Store, adapters []provider.Adapter, publisher messaging.Publisher,
	recorder analytics.Recorder, logger *zap.Logger, cfg *config.Config) *reconcile.Engine {
	return reconcile.New(st, adapters, publisher, recorder, logger, cfg.FetchWorkers)
}

func newServer(engine *reconcile.Engine, detector *detect.Detector, st *store.Store,
	logger *zap.Logger, cfg *config.Config) *server.Server {
	return server.New(engine, detector, st, logger, cfg.HTTPPort)
}

func newScheduler(st *store.Store, engine *reconcile.Engine, logger *zap.Logger, cfg *config.Config) *scheduler.Scheduler {
	return scheduler.New(st, engine, logger, cfg.ScrapeInterval)
}

func run(lc fx.Lifecycle, srv *server.Server, sched *scheduler.Scheduler, publisher messaging.Publisher,
	pool *pgxpool.Pool, c cache.Cache, cfg *config.Config, logger *zap.Logger) {

	var shutdownTracer func()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.OTLPCollectorURL != "" {
				shutdown, err := telemetry.InitTracer(ctx, "job-search-command-center", cfg.OTLPCollectorURL)
				if err != nil {
					return err
				}
				shutdownTracer = shutdown
			}

			if err := sched.Start(); err != nil {
				return err
			}

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sched.Stop()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("http shutdown error", zap.Error(err))
			}
			publisher.Close()
			pool.Close()
			if err := c.Close(); err != nil {
				logger.Warn("cache close error", zap.Error(err))
			}
			if shutdownTracer != nil {
				shutdownTracer()
			}
			return nil
		},
	})
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newCache,
			newPool,
			store.New,
			provider.All,
			newDetector,
			messaging.NewPublisher,
			newRecorder,
			newEngine,
			newServer,
			newScheduler,
		),
		fx.Invoke(run),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
