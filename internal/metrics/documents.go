package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// documentsRenderedTotal counts render attempts.
	// Labels:
	// - kind:   daily_report | punch_list | punch_list_xlsx | checklist
	// - result: success | failure
	documentsRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railcore",
			Subsystem: "documents",
			Name:      "rendered_total",
			Help:      "Document render attempts by kind and result.",
		},
		[]string{"kind", "result"},
	)

	documentRenderSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "railcore",
			Subsystem: "documents",
			Name:      "render_seconds",
			Help:      "Document render latency in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"kind"},
	)

	documentBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "railcore",
			Subsystem: "documents",
			Name:      "size_bytes",
			Help:      "Rendered document size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 10),
		},
		[]string{"kind"},
	)

	// dispatchOutcomesTotal counts notifier outcomes.
	// Labels:
	// - result: sent | logged | failed | timeout
	dispatchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railcore",
			Subsystem: "dispatch",
			Name:      "outcomes_total",
			Help:      "Report dispatch outcomes.",
		},
		[]string{"result"},
	)
)

// ObserveRender records one render attempt.
func ObserveRender(kind string, ok bool, seconds float64, size int) {
	if kind == "" {
		kind = "unknown"
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	documentsRenderedTotal.WithLabelValues(kind, result).Inc()
	documentRenderSeconds.WithLabelValues(kind).Observe(seconds)
	if ok {
		documentBytes.WithLabelValues(kind).Observe(float64(size))
	}
}

// IncDispatchOutcome increments the dispatch outcome counter.
func IncDispatchOutcome(result string) {
	if result == "" {
		result = "unknown"
	}
	dispatchOutcomesTotal.WithLabelValues(result).Inc()
}
