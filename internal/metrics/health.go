package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// dependencyUp is 1 when the last ping to a dependency succeeded, else 0.
	// Labels:
	// - dependency: postgres | redis
	dependencyUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "railcore",
		Subsystem: "deps",
		Name:      "up",
		Help:      "Dependency availability (1=up, 0=down).",
	}, []string{"dependency"})

	dependencyPingSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "railcore",
		Subsystem: "deps",
		Name:      "ping_seconds",
		Help:      "Dependency ping latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"dependency"})
)

// CheckDependency pings a dependency, records its gauge and latency, and
// returns "ok" or "down".
func CheckDependency(ctx context.Context, name string, ping func(context.Context) error) string {
	start := time.Now()
	err := ping(ctx)
	dependencyPingSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		dependencyUp.WithLabelValues(name).Set(0)
		return "down"
	}
	dependencyUp.WithLabelValues(name).Set(1)
	return "ok"
}
