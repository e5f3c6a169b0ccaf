package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(statusTransitionsTotal) }

var statusTransitionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "status_transitions_total",
		Help: "Status transition attempts by entity kind and outcome.",
	},
	[]string{"kind", "outcome"}, // kind: 'job'|'order'; outcome: 'applied', 'rejected', 'conflict'
)

func IncStatusTransition(kind, outcome string) {
	statusTransitionsTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}
