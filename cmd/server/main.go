package main

import (
	"context"
	"errors"
	"kolimeet-service/internal/api"
	"kolimeet-service/internal/app"
	"kolimeet-service/internal/config"
	"kolimeet-service/internal/platform/logger"
	"kolimeet-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, Redis cache, NATS) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatal("load config", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, store, err := app.OpenListings(cfg)
	if err != nil {
		log.Fatal("open listing store", zap.Error(err))
	}
	defer conn.Close()

	// Seed demo data on startup for local runs.
	if cfg.DBDriver == "sqlite" && cfg.SeedPath != "" {
		trips, parcels, err := app.SeedListings(ctx, store, cfg.SeedPath)
		if err != nil {
			log.Fatal("seed listings", zap.Error(err))
		}
		log.Info("seeded listings", zap.Int("trips", trips), zap.Int("parcels", parcels))
	}

	candidates, closeCache, err := app.CandidateStore(ctx, cfg, store)
	if err != nil {
		log.Fatal("candidate cache", zap.Error(err))
	}
	defer closeCache()

	notifier, closeNotifier, err := app.Notifier(cfg)
	if err != nil {
		log.Fatal("match notifier", zap.Error(err))
	}
	defer closeNotifier()

	matcher := services.NewMatcher(candidates,
		services.WithDefaultMaxResults(cfg.MaxResults),
		services.WithLogger(log.Named("matcher")),
	)

	router := api.NewRouter(api.RouterDeps{
		Matcher:          matcher,
		Reader:           store,
		Notifier:         notifier,
		OwnerConcurrency: cfg.OwnerMatchConcurrency,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("db_driver", cfg.DBDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}
