// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeCached    = "cached"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
	OutcomeDiscarded = "discarded"
)

// TransactionsSaved counts transactions appended to the local store.
var TransactionsSaved = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "novatax",
	Subsystem: "store",
	Name:      "transactions_saved_total",
	Help:      "Total transactions appended to the local store.",
})

// RemoteFailures counts best-effort writes and reads that failed against the hosted datastore.
var RemoteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "novatax",
	Subsystem: "store",
	Name:      "remote_failures_total",
	Help:      "Total hosted datastore operations that failed, by operation.",
}, []string{"op"})

// LocalFallbacks counts loads served from the local cache because the remote could not be read.
var LocalFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "novatax",
	Subsystem: "store",
	Name:      "local_fallbacks_total",
	Help:      "Total loads served from the local cache after a remote failure.",
})

// TaxPredictions counts AI tax-rate predictions by outcome.
var TaxPredictions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "novatax",
	Subsystem: "tax",
	Name:      "predictions_total",
	Help:      "Total AI tax rate predictions, by outcome.",
}, []string{"outcome"})

// AIRequests counts requests sent to the AI collaborator.
var AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "novatax",
	Subsystem: "ai",
	Name:      "requests_total",
	Help:      "Total AI collaborator requests, by provider and outcome.",
}, []string{"provider", "outcome"})

// AILatency observes AI collaborator round-trip time.
var AILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "novatax",
	Subsystem: "ai",
	Name:      "latency_seconds",
	Help:      "AI collaborator round-trip latency.",
	Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
}, []string{"provider"})

// HTTPRequests counts API requests by route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "novatax",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP API requests, by method, route and status.",
}, []string{"method", "route", "status"})
