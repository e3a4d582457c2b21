package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/samSKIF/EmployeeRewards-sub009/eventbus"
)

var (
	eventDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventbus_deliveries_total",
		Help: "Event deliveries per type, subscriber and outcome.",
	}, []string{"event_type", "subscriber", "outcome"})

	eventDeliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventbus_delivery_duration_seconds",
		Help:    "Handler execution time per event type.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
)

// BusObserver bridges the bus's delivery hook into Prometheus. Pass it to
// eventbus.New via WithObserver.
func BusObserver() eventbus.ObserverFunc {
	return func(eventType, subscriberID string, err error, elapsed time.Duration) {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		eventDeliveries.WithLabelValues(eventType, subscriberID, outcome).Inc()
		eventDeliveryDuration.WithLabelValues(eventType).Observe(elapsed.Seconds())
	}
}
