package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the counters below.
const (
	OutcomeOK           = "ok"
	OutcomeTransport    = "transport_error"
	OutcomeUnauth       = "unauthenticated"
	OutcomeFetched      = "fetched"
	OutcomeFailed       = "failed"
	OutcomeCached       = "cached"
	OutcomeInFlight     = "in_flight"
	OutcomeNotFound     = "not_found"
	OutcomePatchDropped = "patch_dropped"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartable_upstream_requests_total",
		Help: "Requests sent to the pedagogy API, by operation and outcome",
	}, []string{"operation", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cartable_upstream_request_duration_seconds",
		Help:    "Latency of requests sent to the pedagogy API",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	treeExpansions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartable_tree_expansions_total",
		Help: "Expand events handled by tree controllers, by outcome",
	}, []string{"outcome"})

	treeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cartable_tree_sessions",
		Help: "Tree controllers currently held by the gateway",
	})
)

// ObserveUpstream records one upstream call.
func ObserveUpstream(operation, outcome string, seconds float64) {
	upstreamRequests.WithLabelValues(operation, outcome).Inc()
	upstreamDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveExpansion records how an expand event was resolved.
func ObserveExpansion(outcome string) {
	treeExpansions.WithLabelValues(outcome).Inc()
}

// SetTreeSessions publishes the number of live tree controllers.
func SetTreeSessions(n int) {
	treeSessions.Set(float64(n))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
