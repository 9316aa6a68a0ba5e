package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedforward_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedforward_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// WebhookEvents counts raw notification events received per batch feed.
	WebhookEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feedforward_webhook_events_total",
			Help: "Raw click-event notifications received on the webhook endpoint",
		},
	)

	// WebhookResponses tracks conditional survey updates by outcome.
	WebhookResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedforward_webhook_responses_total",
			Help: "Survey response updates issued by the reconciler",
		},
		[]string{"result"},
	)

	// WebhookStoreFailures counts store errors that never reach the caller.
	WebhookStoreFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feedforward_webhook_store_failures_total",
			Help: "Survey store errors during webhook reconciliation",
		},
	)
)

// Reconciler update outcomes used as the "result" label.
const (
	ResultApplied = "applied"
	ResultNoop    = "noop"
)

func Init() {
	prometheus.MustRegister(RequestCount, RequestDuration, WebhookEvents, WebhookResponses, WebhookStoreFailures)
}
