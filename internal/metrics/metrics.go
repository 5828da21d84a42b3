package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostel_booking",
			Name:      "booking_transitions_total",
			Help:      "Count of booking status transitions by target status.",
		},
		[]string{"to"},
	)

	allocationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hostel_booking",
			Name:      "allocation_outcomes_total",
			Help:      "Count of bed allocation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	bedsReleased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hostel_booking",
			Name:      "beds_released_total",
			Help:      "Count of beds released back to inventory.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingTransitions, allocationOutcomes, bedsReleased)
	})
}

// IncBookingTransition records a booking status transition.
func IncBookingTransition(to string) {
	bookingTransitions.WithLabelValues(to).Inc()
}

// IncAllocationOutcome records an allocation attempt outcome ("reserved" or "no_capacity").
func IncAllocationOutcome(outcome string) {
	allocationOutcomes.WithLabelValues(outcome).Inc()
}

// IncBedReleased records a bed release.
func IncBedReleased() {
	bedsReleased.Inc()
}
