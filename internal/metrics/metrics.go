// Package metrics provides Prometheus metrics for fleetwatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "fleetwatch"
)

// Ingestion metrics.
var (
	// BatchesTotal counts ingestion batches, labeled by result.
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_batches_total",
			Help:      "Total number of ingestion batches",
		},
		[]string{"result"}, // result: accepted, invalid, error
	)

	// MetricsIngestedTotal counts stored metric points per resource kind.
	MetricsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metrics_ingested_total",
			Help:      "Total number of metric points written to the log",
		},
		[]string{"kind"},
	)

	// AlertsIngestedTotal counts stored alerts per severity.
	AlertsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_ingested_total",
			Help:      "Total number of alerts written to the log",
		},
		[]string{"severity"},
	)

	// IngestLatency measures the duration of one ingestion transaction.
	IngestLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_latency_seconds",
			Help:      "Time to validate and commit one ingestion batch in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)

// Query metrics.
var (
	// QueryLatency measures read-path latency per operation.
	QueryLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_latency_seconds",
			Help:      "Latency of projection and summary queries in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"}, // operation: latest, history, entities, summary, dashboard
	)

	// AlertTransitionsTotal counts alert state transitions.
	AlertTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_transitions_total",
			Help:      "Total number of alert acknowledgments and tickets",
		},
		[]string{"transition"}, // transition: acknowledge, ticket
	)
)

// HTTP metrics.
var (
	// HTTPRequestsTotal counts served requests by route pattern and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "code"},
	)

	// HTTPRequestDuration measures request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
