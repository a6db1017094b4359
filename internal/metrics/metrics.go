package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the rostering engine
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Engine Metrics
	RostersGeneratedTotal   prometheus.Counter
	AssignmentsCreatedTotal prometheus.CounterVec
	ViolationsDetectedTotal prometheus.CounterVec
	EngineDuration          prometheus.HistogramVec
	PartialResultsTotal     prometheus.Counter

	// Disruption Metrics
	DisruptionsReportedTotal  prometheus.CounterVec
	RecommendationsBuiltTotal prometheus.Counter
	ConflictRetriesTotal      prometheus.Counter

	// Eligibility Cache Metrics
	EligibilityCacheHits     prometheus.Counter
	EligibilityCacheMisses   prometheus.Counter
	EligibilityInvalidations prometheus.Counter
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewops_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crewops_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crewops_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		RostersGeneratedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crewops_rosters_generated_total",
				Help: "Total roster generation requests completed",
			},
		),
		AssignmentsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewops_assignments_created_total",
				Help: "Total roster assignments created by status",
			},
			[]string{"status"},
		),
		ViolationsDetectedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewops_violations_detected_total",
				Help: "Total constraint violations detected by type and severity",
			},
			[]string{"type", "severity"},
		),
		EngineDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crewops_engine_duration_seconds",
				Help:    "Engine operation duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		PartialResultsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crewops_partial_results_total",
				Help: "Total generation or resolution requests that hit the time budget",
			},
		),

		DisruptionsReportedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewops_disruptions_reported_total",
				Help: "Total disruption events reported by type",
			},
			[]string{"type"},
		),
		RecommendationsBuiltTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crewops_recommendations_built_total",
				Help: "Total disruption recommendations produced",
			},
		),
		ConflictRetriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crewops_conflict_retries_total",
				Help: "Total optimistic-lock retries across mutation paths",
			},
		),

		EligibilityCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crewops_eligibility_cache_hits_total",
				Help: "Eligibility index snapshot cache hits",
			},
		),
		EligibilityCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crewops_eligibility_cache_misses_total",
				Help: "Eligibility index snapshot cache misses",
			},
		),
		EligibilityInvalidations: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crewops_eligibility_invalidations_total",
				Help: "Point or full invalidations applied to the eligibility index",
			},
		),
	}
}
