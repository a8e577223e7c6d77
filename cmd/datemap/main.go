package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/datemap/internal/config"
	"github.com/UnknownOlympus/datemap/internal/logger"
	"github.com/UnknownOlympus/datemap/internal/metrics"
	"github.com/UnknownOlympus/datemap/internal/server"
	"github.com/UnknownOlympus/datemap/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// main is the entry point of the view server.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	log := logger.New(cfg.Env, os.Stdout)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	cacheStore, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		// Markers still render from CSV coordinates without a cache.
		log.WarnContext(ctx, "Geocoding cache unavailable", "error", err)
		cacheStore, closeStore = nil, func() {}
	}
	defer closeStore()

	srv := server.New(log, cfg.CSVPath, cacheStore, appMetrics, reg)

	log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = srv.ListenAndServe(ctx, cfg.Port); err != nil {
		log.ErrorContext(ctx, "View server stopped with error", "error", err)
		return
	}

	log.InfoContext(ctx, "Application stopped gracefully.")
}
