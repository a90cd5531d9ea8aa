package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/reviewdesk/reviewdesk/internal/app"
	"github.com/reviewdesk/reviewdesk/internal/observability"
	"github.com/reviewdesk/reviewdesk/internal/platform/cache"
	"github.com/reviewdesk/reviewdesk/internal/platform/db"
	"github.com/reviewdesk/reviewdesk/internal/records"
	"github.com/reviewdesk/reviewdesk/internal/records/store"
	"github.com/reviewdesk/reviewdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	seed, err := loadSeed(cfg)
	if err != nil {
		logger.Error("load seed", slog.Any("error", err))
		os.Exit(1)
	}

	repo, closeRepo, err := openRepository(ctx, cfg, seed)
	if err != nil {
		logger.Error("open record store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeRepo()

	metrics := observability.NewMetrics()
	opts := []store.ServiceOption{
		store.WithLogger(logger),
		store.WithMetrics(metrics),
	}

	if cfg.RedisEnabled() {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, page cache disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			opts = append(opts, store.WithCache(store.NewPageCache(redisClient, cfg.CacheTTL)))
		}

		publisher := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("asynq client close", slog.Any("error", err))
			}
		}()
		opts = append(opts, store.WithPublisher(publisher))
	}

	service := store.NewService(repo, opts...)
	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		RecordHandler: store.NewHandler(logger, service),
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("driver", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func loadSeed(cfg *app.Config) ([]records.Record, error) {
	if cfg.StoreSeedFile != "" {
		return store.LoadSeed(cfg.StoreSeedFile)
	}
	return store.DefaultSeed()
}

func openRepository(ctx context.Context, cfg *app.Config, seed []records.Record) (store.Repository, func(), error) {
	switch cfg.StoreDriver {
	case app.DriverSQLite:
		repo, err := store.OpenSQLite(ctx, cfg.SQLitePath, seed)
		if err != nil {
			return nil, nil, err
		}
		return repo, closer(repo), nil
	case app.DriverPostgres:
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			return nil, nil, err
		}
		repo := store.NewPostgresRepository(pool)
		if err := repo.Migrate(ctx, seed); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	default:
		return store.NewMemoryRepository(seed), func() {}, nil
	}
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}
