package notify

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_total",
			Help: "Notification events by kind and outcome (queued, dropped, handled, failed).",
		},
		[]string{"kind", "result"},
	)
	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_deliveries_total",
			Help: "Per-sender delivery attempts by kind and outcome (sent, skipped, failed).",
		},
		[]string{"sender", "kind", "result"},
	)
)

func init() {
	prometheus.MustRegister(eventsTotal, deliveriesTotal)
}
