package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/datemap/internal/config"
	"github.com/UnknownOlympus/datemap/internal/dates"
	"github.com/UnknownOlympus/datemap/internal/geocoding"
	"github.com/UnknownOlympus/datemap/internal/logger"
	"github.com/UnknownOlympus/datemap/internal/metrics"
	"github.com/UnknownOlympus/datemap/internal/service"
	"github.com/UnknownOlympus/datemap/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const pushJobName = "datemap_geocache"

// main runs one geocoding cache update and exits.
func main() {
	// Interrupting stops the lookups; whatever was resolved is still saved.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cfg := config.MustLoad()
	log := logger.New(cfg.Env, os.Stdout)

	err := run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("Geocoding cache update failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)

	cacheStore, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	geoCache, err := cacheStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("refusing to overwrite unreadable cache: %w", err)
	}

	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:           geocoding.ProviderType(cfg.ProviderType),
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.ProviderURL,
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}

	addresses := collectAddresses(ctx, log, cfg.CSVPath, cfg.Addresses)

	builder := service.NewCacheBuilder(
		log, provider, cfg.ProviderType, appMetrics, service.NewThrottle(cfg.RequestDelay),
	)
	report := builder.Run(ctx, geoCache, addresses)

	// Saving must happen even after an interrupt.
	saveCtx := context.WithoutCancel(ctx)
	if err = cacheStore.Save(saveCtx, geoCache); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}

	if cfg.PushgatewayURL != "" {
		pusher := push.New(cfg.PushgatewayURL, pushJobName).Gatherer(reg)
		if errPush := pusher.PushContext(saveCtx); errPush != nil {
			log.WarnContext(ctx, "Failed to push metrics", "url", cfg.PushgatewayURL, "error", errPush)
		}
	}

	log.InfoContext(ctx, "Geocoding cache update finished",
		"requests", report.Requests(),
		"entries", geoCache.Len(),
	)

	return nil
}

// collectAddresses returns the Address column of the dates CSV followed by the
// configured addresses, without duplicates. An unreadable CSV is not fatal.
func collectAddresses(ctx context.Context, log *slog.Logger, csvPath string, extra []string) []string {
	records, err := dates.Load(csvPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.WarnContext(ctx, "Dates file not found, using configured addresses only", "path", csvPath)
	case err != nil:
		log.ErrorContext(ctx, "Failed to read dates file, using configured addresses only", "path", csvPath, "error", err)
	}

	seen := make(map[string]bool)
	addresses := []string{}
	for _, address := range append(dates.Addresses(records), extra...) {
		if seen[address] {
			continue
		}
		seen[address] = true
		addresses = append(addresses, address)
	}

	return addresses
}
