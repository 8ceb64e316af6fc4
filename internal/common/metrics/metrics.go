// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignupsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlist_signups_accepted_total",
			Help: "Total number of waitlist signups persisted",
		},
	)

	SignupsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_signups_rejected_total",
			Help: "Total number of waitlist signups rejected by reason",
		},
		[]string{"reason"},
	)

	SubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "waitlist_submission_duration_seconds",
			Help: "Duration of the full submission pipeline in seconds",
		},
	)

	NotificationSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_notification_sends_total",
			Help: "Notification send outcomes by message kind and status",
		},
		[]string{"message", "status"},
	)

	EmailExistsLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_email_exists_lookups_total",
			Help: "Best-effort email existence lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "waitlist_http_request_duration_seconds",
			Help: "HTTP request duration by route",
		},
		[]string{"route"},
	)
)
