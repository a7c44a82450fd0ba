package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bi-dashboard/internal/config"
	"bi-dashboard/internal/ingest"
	"bi-dashboard/internal/lookup"
	"bi-dashboard/internal/middleware"
	"bi-dashboard/internal/observability"
	"bi-dashboard/internal/server"
	"bi-dashboard/internal/services"
	"bi-dashboard/internal/source"
)

const initialLoadTimeout = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
	)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	tables, err := lookup.Load(cfg.Lookups.File)
	if err != nil {
		logger.Error("failed to load lookup tables", "error", err, "file", cfg.Lookups.File)
		os.Exit(1)
	}

	client := source.NewClient(cfg.Source, logger, metrics)
	pipeline := ingest.NewPipeline(tables)
	datasets := services.NewDatasetCache(client, pipeline, cfg.Cache.DatasetTTL, logger, metrics)
	filters := services.NewFilterEngine(cfg.Cache.FilterCacheSize, metrics)
	engine := services.NewEngine(datasets, filters, tables, cfg.Cache.ResultCacheSize, logger, metrics)

	// Warm the dataset cache before accepting traffic; a failed warm-up
	// is not fatal, the first request retries the fetch.
	warmCtx, cancel := context.WithTimeout(context.Background(), initialLoadTimeout)
	start := time.Now()
	if ds, err := datasets.Get(warmCtx, true); err != nil {
		logger.Warn("initial dataset load failed", "error", err)
	} else {
		logger.Info("initial dataset loaded",
			"records", len(ds.Rows),
			"duration", time.Since(start),
		)
	}
	cancel()

	srv := server.NewServer(engine, logger, registry)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(metrics),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server.ShutdownTimeout)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("dataset cache statistics at shutdown", "stats", engine.Stats())
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
