package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CandidatesImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "candidates_imported_total",
			Help: "Total number of candidate records created from import files",
		},
	)

	ImportsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_imports_rejected_total",
			Help: "Total number of import files rejected before any record was written",
		},
		[]string{"reason"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_submissions_total",
			Help: "Total number of submission attempts by outcome",
		},
		[]string{"result"},
	)

	OutboxEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_events_published_total",
			Help: "Total number of outbox events handed to the broker",
		},
		[]string{"event_type"},
	)

	OutboxPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outbox_publish_failures_total",
			Help: "Total number of outbox batches the broker rejected",
		},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_events_consumed_total",
			Help: "Total number of broker events handled by outcome",
		},
		[]string{"event_type", "result"},
	)

	ThumbnailDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thumbnail_render_duration_seconds",
			Help:    "Duration of rendering one photo thumbnail",
			Buckets: prometheus.DefBuckets,
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of candidate requests rejected by the rate limiter",
		},
	)
)

// Submission outcomes.
const (
	ResultAccepted         = "accepted"
	ResultAlreadySubmitted = "already_submitted"
	ResultNotFound         = "not_found"
	ResultInvalid          = "invalid"
	ResultError            = "error"
)
