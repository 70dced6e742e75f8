package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookRequestsTotal counts inbound platform webhooks by endpoint and response status.
	WebhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurgo",
			Subsystem: "ivr",
			Name:      "webhook_requests_total",
			Help:      "Total number of inbound webhook requests",
		},
		[]string{"endpoint", "status"},
	)

	// OrdersTotal counts order events recorded, split by first order vs repeat order.
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurgo",
			Subsystem: "ivr",
			Name:      "orders_total",
			Help:      "Total orders recorded in conversation logs",
		},
		[]string{"pizza", "kind"},
	)

	// RemoteCallsTotal counts calls to the telephony platform by operation and outcome.
	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurgo",
			Subsystem: "ivr",
			Name:      "remote_calls_total",
			Help:      "Total calls to the telephony platform API",
		},
		[]string{"operation", "outcome"},
	)

	// TrackedConversations reports the number of conversations held by the order state tracker.
	TrackedConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jurgo",
			Subsystem: "ivr",
			Name:      "tracked_conversations",
			Help:      "Conversations currently held in the order state cache",
		},
	)
)

// Outcome labels a remote call result.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
