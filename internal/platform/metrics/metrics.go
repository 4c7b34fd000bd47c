package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Methods are
// nil-receiver safe so unit tests can pass a nil *Metrics and skip global
// registration.
type Metrics struct {
	ProfilesSubmitted prometheus.Counter
	ProfilesApproved  prometheus.Counter
	ProfilesDeleted   prometheus.Counter
	VotesAccepted     *prometheus.CounterVec
	VotesRejected     prometheus.Counter
	PhotosUploaded    prometheus.Counter
	PushSent          prometheus.Counter
	PushFailed        prometheus.Counter
	AuditDropped      prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProfilesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conocida_profiles_submitted_total",
			Help: "Total number of profiles submitted for moderation",
		}),
		ProfilesApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conocida_profiles_approved_total",
			Help: "Total number of profiles approved into the public feed",
		}),
		ProfilesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conocida_profiles_deleted_total",
			Help: "Total number of profiles deleted by moderators",
		}),
		VotesAccepted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "conocida_votes_accepted_total",
			Help: "Total number of accepted votes by choice",
		}, []string{"choice"}),
		VotesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conocida_votes_rejected_total",
			Help: "Total number of votes rejected as duplicates",
		}),
		PhotosUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conocida_photos_uploaded_total",
			Help: "Total number of photos stored in the object bucket",
		}),
		PushSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conocida_push_sent_total",
			Help: "Total number of push notifications delivered",
		}),
		PushFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conocida_push_failed_total",
			Help: "Total number of push notifications that failed per token",
		}),
		AuditDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "conocida_audit_events_dropped_total",
			Help: "Audit events dropped because the worker inbox was full",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "conocida_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) IncProfilesSubmitted() {
	if m == nil {
		return
	}
	m.ProfilesSubmitted.Inc()
}

func (m *Metrics) IncProfilesApproved() {
	if m == nil {
		return
	}
	m.ProfilesApproved.Inc()
}

func (m *Metrics) IncProfilesDeleted() {
	if m == nil {
		return
	}
	m.ProfilesDeleted.Inc()
}

func (m *Metrics) IncVoteAccepted(choice string) {
	if m == nil {
		return
	}
	m.VotesAccepted.WithLabelValues(choice).Inc()
}

func (m *Metrics) IncVoteRejected() {
	if m == nil {
		return
	}
	m.VotesRejected.Inc()
}

func (m *Metrics) AddPhotosUploaded(n int) {
	if m == nil {
		return
	}
	m.PhotosUploaded.Add(float64(n))
}

func (m *Metrics) IncPushSent() {
	if m == nil {
		return
	}
	m.PushSent.Inc()
}

func (m *Metrics) IncPushFailed() {
	if m == nil {
		return
	}
	m.PushFailed.Inc()
}

func (m *Metrics) IncAuditDropped() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}

func (m *Metrics) ObserveRequest(route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, status).Observe(elapsed.Seconds())
}
