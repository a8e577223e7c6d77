package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/datemap/internal/cache"
	"github.com/UnknownOlympus/datemap/internal/geocoding"
	"github.com/UnknownOlympus/datemap/internal/metrics"
	"golang.org/x/time/rate"
)

// Throttle blocks until the next provider request may start.
// *rate.Limiter satisfies it.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Report summarizes one cache builder run.
type Report struct {
	Cached   int // Cached addresses were already present and cost no request.
	Resolved int // Resolved addresses were looked up and added to the cache.
	Empty    int // Empty lookups matched nothing; the cache is unchanged.
	Failed   int // Failed lookups returned an error; the cache is unchanged.
	Skipped  int // Skipped addresses were blank, or left unprocessed after cancellation.
}

// Requests returns how many provider requests the run issued.
func (r Report) Requests() int {
	return r.Resolved + r.Empty + r.Failed
}

// CacheBuilder resolves addresses that are missing from a geocoding cache.
// Lookups run strictly one after another, paced by the throttle.
type CacheBuilder struct {
	log          *slog.Logger       // Logger for logging builder activities
	provider     geocoding.Provider // Geocoding provider for external geocoding services
	providerName string             // Name of the provider for metrics labeling
	metrics      *metrics.Metrics   // Metrics for tracking builder performance
	throttle     Throttle           // Minimum interval between provider requests
}

// NewThrottle returns a limiter that lets the first request through immediately
// and spaces every following one at least delay apart.
func NewThrottle(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	return rate.NewLimiter(rate.Every(delay), 1)
}

// NewCacheBuilder creates a new instance of CacheBuilder.
func NewCacheBuilder(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	throttle Throttle,
) *CacheBuilder {
	return &CacheBuilder{
		log:          log,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		throttle:     throttle,
	}
}

// Run processes addresses in order and adds every newly resolved address to c.
// Per-address failures are logged and never abort the batch. Cancelling ctx stops
// the run; entries resolved so far stay in c. Persisting c is up to the caller.
func (b *CacheBuilder) Run(ctx context.Context, c *cache.Cache, addresses []string) Report {
	var report Report

	b.log.InfoContext(ctx, "Starting geocoding cache update", "addresses", len(addresses), "cached", c.Len())

	for idx, address := range addresses {
		if ctx.Err() != nil {
			remaining := len(addresses) - idx
			report.Skipped += remaining
			b.log.WarnContext(ctx, "Cache update interrupted", "remaining", remaining, "error", ctx.Err())
			break
		}

		status := b.process(ctx, c, address)
		switch status {
		case metrics.StatusCached:
			report.Cached++
		case metrics.StatusResolved:
			report.Resolved++
		case metrics.StatusEmpty:
			report.Empty++
		case metrics.StatusFailed:
			report.Failed++
		default:
			report.Skipped++
		}
	}

	b.metrics.CacheEntries.Set(float64(c.Len()))
	b.log.InfoContext(ctx, "Cache update complete",
		"cached", report.Cached,
		"resolved", report.Resolved,
		"empty", report.Empty,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)

	return report
}

// Lookup returns the cache entry for address, geocoding and caching it first when
// it is missing. It reports false when the address is blank, matched nothing, or
// the lookup failed.
func (b *CacheBuilder) Lookup(ctx context.Context, c *cache.Cache, address string) (cache.Entry, bool) {
	b.process(ctx, c, address)

	return c.Get(address)
}

// process handles one address and returns its lookup status, or "" when skipped.
func (b *CacheBuilder) process(ctx context.Context, c *cache.Cache, address string) string {
	if strings.TrimSpace(address) == "" {
		b.log.DebugContext(ctx, "Skipping blank address")
		return ""
	}

	if _, ok := c.Get(address); ok {
		b.log.InfoContext(ctx, "Already cached", "address", address)
		b.metrics.LookupsTotal.WithLabelValues(metrics.StatusCached).Inc()
		return metrics.StatusCached
	}

	if err := b.throttle.Wait(ctx); err != nil {
		b.log.WarnContext(ctx, "Throttle wait aborted", "address", address, "error", err)
		return ""
	}

	b.log.InfoContext(ctx, "Geocoding", "address", address)

	startTime := time.Now()
	place, err := b.provider.Geocode(ctx, address)
	duration := time.Since(startTime).Seconds()
	b.metrics.RequestSeconds.WithLabelValues(b.providerName).Observe(duration)

	switch {
	case errors.Is(err, geocoding.ErrNoResults):
		b.log.WarnContext(ctx, "No results", "address", address)
		b.metrics.LookupsTotal.WithLabelValues(metrics.StatusEmpty).Inc()
		return metrics.StatusEmpty
	case err != nil:
		b.log.ErrorContext(ctx, "Failed to geocode", "address", address, "error", err)
		b.metrics.LookupsTotal.WithLabelValues(metrics.StatusFailed).Inc()
		b.metrics.APIErrors.Inc()
		return metrics.StatusFailed
	}

	c.Put(address, cache.Entry{
		Latitude:    place.Latitude,
		Longitude:   place.Longitude,
		Address:     address,
		DisplayName: place.DisplayName,
	})
	b.metrics.LookupsTotal.WithLabelValues(metrics.StatusResolved).Inc()
	b.log.InfoContext(ctx, "Cached", "address", address, "lat", place.Latitude, "lng", place.Longitude)

	return metrics.StatusResolved
}
