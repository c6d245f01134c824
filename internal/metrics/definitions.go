package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP server metrics, recorded by the HTTPMetrics middleware.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pethealth_http_requests_total",
			Help: "Total HTTP requests by method, route pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pethealth_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Gemini AI client metrics. Operation is one of "symptom", "image",
// "explanation"; stage identifies where a call failed.
var (
	GeminiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pethealth_gemini_requests_total",
			Help: "Successful Gemini API calls by operation.",
		},
		[]string{"operation"},
	)

	GeminiErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pethealth_gemini_errors_total",
			Help: "Gemini API failures by operation and stage (request, network, timeout, read, api, api_quota, api_overloaded, parse, schema, empty).",
		},
		[]string{"operation", "stage"},
	)

	GeminiAPILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pethealth_gemini_api_latency_seconds",
			Help:    "Gemini API call latency by operation.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		},
		[]string{"operation"},
	)
)

// Analysis pipeline metrics.
var (
	// AnalysisOutcomesTotal tracks how each analysis resolved: "model",
	// "fallback", "quota", "overloaded", "degraded", "rejected", "cached".
	AnalysisOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pethealth_analysis_outcomes_total",
			Help: "Analysis results by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	AnalysisCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pethealth_analysis_cache_hits_total",
			Help: "Image analysis cache hits.",
		},
	)

	AnalysisCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pethealth_analysis_cache_misses_total",
			Help: "Image analysis cache misses.",
		},
	)
)

// TTS proxy metrics.
var (
	TTSRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pethealth_tts_requests_total",
			Help: "Successful TTS generations.",
		},
	)

	TTSErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pethealth_tts_errors_total",
			Help: "TTS failures by stage (generate, download).",
		},
		[]string{"stage"},
	)
)

// Database-derived gauges, refreshed by UpdateRecordMetrics.
var (
	PetsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pethealth_pets_total",
			Help: "Number of pet profiles.",
		},
	)

	HealthRecordsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pethealth_health_records_total",
			Help: "Number of stored health records.",
		},
	)

	CacheEntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pethealth_analysis_cache_entries",
			Help: "Rows in the image analysis cache.",
		},
	)

	CacheHitsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pethealth_analysis_cache_recorded_hits",
			Help: "Sum of per-entry hit counts in the image analysis cache.",
		},
	)
)
