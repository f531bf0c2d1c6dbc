// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// rateLimitExceeded counts HTTP 429 events from the rate limit middleware.
	// Labels:
	// - endpoint: short name like "export:checklist", "reports:send", ...
	// - source:   "org" or "ip"
	rateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railcore",
			Subsystem: "http",
			Name:      "rate_limit_exceeded_total",
			Help:      "Number of requests rejected due to rate limiting (HTTP 429)",
		},
		[]string{"endpoint", "source"},
	)

	// scheduledRunsTotal counts daily distribution runs per project outcome.
	// Labels:
	// - result: sent | skipped | failed
	scheduledRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railcore",
			Subsystem: "scheduler",
			Name:      "distributions_total",
			Help:      "Per-project outcomes of the scheduled daily distribution.",
		},
		[]string{"result"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// IncRateLimitExceeded increments the 429 counter for the given endpoint and source.
func IncRateLimitExceeded(endpoint, source string) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	if source == "" {
		source = "unknown"
	}
	rateLimitExceeded.WithLabelValues(endpoint, source).Inc()
}

// AddScheduledOutcomes adds one distribution run's totals.
func AddScheduledOutcomes(sent, skipped, failed int) {
	scheduledRunsTotal.WithLabelValues("sent").Add(float64(sent))
	scheduledRunsTotal.WithLabelValues("skipped").Add(float64(skipped))
	scheduledRunsTotal.WithLabelValues("failed").Add(float64(failed))
}
