package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet_portfolio"

var (
	// UpstreamRequests counts portfolio API calls by endpoint and outcome.
	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Portfolio API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// UpstreamLatency observes portfolio API call latency per attempt.
	UpstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of single portfolio API attempts.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	// RetryAttempts counts backoff retries of portfolio API calls.
	RetryAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_retries_total",
		Help:      "Retries of portfolio API requests after transient failures.",
	}, []string{"endpoint"})

	// CacheLookups counts fetch cache hits and misses.
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_cache_lookups_total",
		Help:      "Fetch cache lookups by kind and result.",
	}, []string{"kind", "result"})

	// PriceUpdates counts inbound price frames by result.
	PriceUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_updates_total",
		Help:      "Inbound price stream frames by result (applied, undecodable, unmapped).",
	}, []string{"result"})

	// PriceSessions counts price stream sessions by how they ended.
	PriceSessions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_sessions_total",
		Help:      "Price stream sessions by terminal state.",
	}, []string{"state"})

	// ActivePriceSessions is 1 while a price stream session is running.
	ActivePriceSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "price_sessions_active",
		Help:      "Number of running price stream sessions.",
	})

	// PortfolioLoads counts coordinator loads by resulting status.
	PortfolioLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "portfolio_loads_total",
		Help:      "Portfolio loads by resulting status.",
	}, []string{"status"})
)

var registerOnce sync.Once

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			UpstreamRequests,
			UpstreamLatency,
			RetryAttempts,
			CacheLookups,
			PriceUpdates,
			PriceSessions,
			ActivePriceSessions,
			PortfolioLoads,
		)
	})
}
