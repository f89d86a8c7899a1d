package resource

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resourceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "resource",
		Name:      "requests_total",
		Help:      "Total number of backend calls broken down by entity, operation and result.",
	}, []string{"entity", "op", "result"})

	resourceLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "console",
		Subsystem: "resource",
		Name:      "latency_seconds",
		Help:      "Latency distribution for backend calls.",
		Buckets: []float64{
			0.005, 0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10,
		},
	}, []string{"entity", "op"})
)

func observe(entity, op string, start time.Time, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	resourceRequests.WithLabelValues(entity, op, result).Inc()
	resourceLatency.WithLabelValues(entity, op).Observe(time.Since(start).Seconds())
}
