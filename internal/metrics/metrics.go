package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the service's Prometheus collectors. One instance is wired
// through the application and registered on a single registry.
type Metrics struct {
	ForecastsComputed *prometheus.CounterVec
	ForecastErrors    *prometheus.CounterVec
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	ProviderRequests  *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		ForecastsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradecast",
			Name:      "forecasts_computed_total",
			Help:      "Forecasts generated, by horizon and model path.",
		}, []string{"horizon", "model"}),
		ForecastErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradecast",
			Name:      "forecast_errors_total",
			Help:      "Forecast generation failures, by reason.",
		}, []string{"reason"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradecast",
			Name:      "cache_hits_total",
			Help:      "Forecast cache hits, by layer.",
		}, []string{"layer"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradecast",
			Name:      "cache_misses_total",
			Help:      "Forecast cache misses, by layer.",
		}, []string{"layer"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradecast",
			Name:      "provider_requests_total",
			Help:      "Outbound provider requests, by provider and outcome.",
		}, []string{"provider", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tradecast",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route and status class.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.ForecastsComputed,
		m.ForecastErrors,
		m.CacheHits,
		m.CacheMisses,
		m.ProviderRequests,
		m.RequestDuration,
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
