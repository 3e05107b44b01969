package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarlink_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scholarlink_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	}, []string{"method", "endpoint"})

	// Transitions counts successful state changes per workflow ("connection", "payment") and target status.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarlink_state_transitions_total",
		Help: "Successful workflow state transitions",
	}, []string{"workflow", "status"})

	// TransitionConflicts counts guarded writes that lost a race or found the wrong prior state.
	TransitionConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarlink_state_transition_conflicts_total",
		Help: "Rejected workflow transitions due to an unexpected current status",
	}, []string{"workflow"})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholarlink_messages_sent_total",
		Help: "Direct messages stored",
	})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarlink_notifications_created_total",
		Help: "Notifications written to the outbox by type",
	}, []string{"type"})
)
