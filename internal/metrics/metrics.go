package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes used as the "status" label of LookupsTotal.
const (
	StatusCached   = "cached"
	StatusResolved = "resolved"
	StatusEmpty    = "empty"
	StatusFailed   = "failed"
)

type Metrics struct {
	LookupsTotal   *prometheus.CounterVec
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	CacheEntries   prometheus.Gauge
	ViewRequests   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		LookupsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocache_lookups_total",
			Help: "Total number of addresses processed by the cache builder, by outcome.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocache_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geocache_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		CacheEntries: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geocache_entries",
			Help: "Number of addresses held in the geocoding cache.",
		}),
		ViewRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "datemap_view_requests_total",
			Help: "Total number of date list and map view requests, by view and status.",
		}, []string{"view", "status"}),
	}
}
