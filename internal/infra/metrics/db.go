package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(storeCallLatencyMs) }

var storeCallLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "store_call_latency_ms",
		Help:    "Storage backend call latency distribution in milliseconds.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	},
	[]string{"backend", "op", "success"},
)

func ObserveStoreCall(backend, op string, latencyMs float64, success bool) {
	storeCallLatencyMs.WithLabelValues(norm(backend), norm(op), strconv.FormatBool(success)).
		Observe(latencyMs)
}
