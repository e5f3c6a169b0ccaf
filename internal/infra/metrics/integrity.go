package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(healthChecksTotal, integrityIssuesFound, orderRepairsTotal) }

var healthChecksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "integrity_health_checks_total",
		Help: "Full health check scans by result.",
	},
	[]string{"healthy"},
)

var integrityIssuesFound = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "integrity_issues_found_total",
		Help: "Individual integrity issues reported across all validations.",
	},
)

var orderRepairsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "integrity_order_repairs_total",
		Help: "Orphaned orders re-linked via the repair path.",
	},
)

func ObserveHealthCheck(healthy bool, issues int) {
	healthChecksTotal.WithLabelValues(strconv.FormatBool(healthy)).Inc()
	integrityIssuesFound.Add(float64(issues))
}

func AddIntegrityIssues(n int) {
	integrityIssuesFound.Add(float64(n))
}

func IncOrderRepair() {
	orderRepairsTotal.Inc()
}
