package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instrumentation for the scoring service
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	PredictionsTotal   prometheus.Counter
	PredictionFailures prometheus.Counter

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	ExternalCalls      *prometheus.CounterVec
	ExternalCallErrors *prometheus.CounterVec

	ConfigSwapsTotal  prometheus.Counter
	RateLimitBlocks   prometheus.Counter
	RateLimitFallback prometheus.Counter
}

// NewMetrics creates and registers all collectors on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "obscura_http_requests_total",
			Help: "HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "obscura_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		PredictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obscura_predictions_total",
			Help: "Scoring pipeline runs.",
		}),
		PredictionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obscura_prediction_failures_total",
			Help: "Scoring pipeline runs that produced a failure outcome.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obscura_cache_hits_total",
			Help: "Prediction cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obscura_cache_misses_total",
			Help: "Prediction cache misses.",
		}),
		ExternalCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "obscura_external_calls_total",
			Help: "Calls to the collector and predictor services.",
		}, []string{"service"}),
		ExternalCallErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "obscura_external_call_errors_total",
			Help: "Failed calls to the collector and predictor services.",
		}, []string{"service"}),
		ConfigSwapsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obscura_score_config_swaps_total",
			Help: "Runtime score range recalibrations.",
		}),
		RateLimitBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obscura_rate_limit_blocks_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		RateLimitFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obscura_rate_limit_fallback_total",
			Help: "Rate limit checks served by the in-memory fallback.",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.PredictionsTotal,
		m.PredictionFailures,
		m.CacheHits,
		m.CacheMisses,
		m.ExternalCalls,
		m.ExternalCallErrors,
		m.ConfigSwapsTotal,
		m.RateLimitBlocks,
		m.RateLimitFallback,
	)

	return m
}

// Handler exposes the registry for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	m.CacheHits.Inc()
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	m.CacheMisses.Inc()
}

// IncrementExternalCall records a call to an upstream service
func (m *Metrics) IncrementExternalCall(service string, failed bool) {
	m.ExternalCalls.WithLabelValues(service).Inc()
	if failed {
		m.ExternalCallErrors.WithLabelValues(service).Inc()
	}
}

// RecordPrediction records one pipeline run
func (m *Metrics) RecordPrediction(failed bool) {
	m.PredictionsTotal.Inc()
	if failed {
		m.PredictionFailures.Inc()
	}
}

// RecordRequest records one HTTP request
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
