package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(orderNumbersAllocatedTotal, orderReservationsTotal) }

var orderNumbersAllocatedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "order_numbers_allocated_total",
		Help: "Total order numbers minted (direct allocations and reservations).",
	},
)

var orderReservationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_reservations_total",
		Help: "Order number reservations by outcome.",
	},
	[]string{"outcome"}, // 'reserved', 'confirmed', 'expired'
)

func IncOrderNumberAllocated() {
	orderNumbersAllocatedTotal.Inc()
}

func IncReservation(outcome string) {
	orderReservationsTotal.WithLabelValues(norm(outcome)).Inc()
}
