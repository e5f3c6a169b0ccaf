package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-production-workflow/internal/application"
	"media-production-workflow/internal/config"
	"media-production-workflow/internal/domain/ports/repository"
	"media-production-workflow/internal/infra/db/memory"
	"media-production-workflow/internal/infra/db/postgres"
	"media-production-workflow/internal/infra/logging"
	"media-production-workflow/internal/infra/metrics"
	"media-production-workflow/internal/infra/redis"
	"media-production-workflow/internal/infra/sched"
	"media-production-workflow/internal/infra/web"
	"media-production-workflow/internal/usecase"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().Bool("dev", cfg.Runtime.Dev).Str("backend", cfg.Storage.Backend).Msg("starting")

	metrics.MustRegister()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence backend.
	var store repository.Store
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connect")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("postgres schema")
		}
		store = postgres.NewStore(pool)
	case "memory":
		memStore, err := memory.Open(cfg.Storage.SnapshotPath, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("memory store open")
		}
		store = memStore.Repositories()
	default:
		logger.Fatal().Str("backend", cfg.Storage.Backend).Msg("unknown storage backend")
	}

	// Redis backs folder locking and the ops rate limiter. It is
	// optional: without it mutations fall back to single-process
	// locking and limiting is disabled.
	var locker usecase.Locker
	var limiter *redis.RateLimiter
	if cfg.Redis.URL != "" {
		rdb, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect")
		}
		defer rdb.Close()
		locker = redis.NewLocker(rdb)
		limiter = redis.NewRateLimiter(rdb)
	} else {
		logger.Warn().Msg("redis not configured; folder locking is process-local and rate limiting is off")
	}

	facade := application.Wire(store, locker, cfg.Allocator.ReservationTTL, logger)

	// Background sweep for timed-out order-number reservations.
	go func() {
		_ = sched.NewReservationSweeper(15*time.Minute, facade, logger).Run(ctx)
	}()

	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, "", cfg.Admin.TokenTTL)
	srv := web.NewServer(facade, auth, cfg.Admin.OpsSecret, limiter, cfg.Admin.RateLimit, logger)
	httpSrv := web.NewHTTPServer(fmt.Sprintf(":%d", cfg.Admin.Port), srv.Router())

	go func() {
		logger.Info().Int("port", cfg.Admin.Port).Msg("ops HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
			cancel()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigc:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	logger.Info().Msg("stopped")
}
