package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransitionMetrics records booking transition outcomes.
type TransitionMetrics struct {
	accepted *prometheus.CounterVec
	rejected *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewTransitionMetrics registers the transition metrics on the provided registerer.
func NewTransitionMetrics(reg prometheus.Registerer) *TransitionMetrics {
	if reg == nil {
		return &TransitionMetrics{}
	}
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transitions_accepted_total",
		Help: "Accepted booking status transitions.",
	}, []string{"from", "to"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transitions_rejected_total",
		Help: "Rejected booking status transitions by rejection code.",
	}, []string{"code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_transition_duration_seconds",
		Help:    "Duration of booking transition commits in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"to"})
	reg.MustRegister(accepted, rejected, duration)
	return &TransitionMetrics{
		accepted: accepted,
		rejected: rejected,
		duration: duration,
	}
}

// IncAccepted increments the accepted counter for a from/to pair.
func (m *TransitionMetrics) IncAccepted(from, to string) {
	if m == nil || m.accepted == nil {
		return
	}
	m.accepted.WithLabelValues(from, to).Inc()
}

// IncRejected increments the rejected counter for a rejection code.
func (m *TransitionMetrics) IncRejected(code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(code).Inc()
}

// ObserveDuration records how long a transition commit took.
func (m *TransitionMetrics) ObserveDuration(to string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(to).Observe(d.Seconds())
}

// PublisherMetrics records outbox publisher outcomes.
type PublisherMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

// NewPublisherMetrics registers the publisher metrics on the provided registerer.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events published to Pub/Sub.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox publish attempts that failed.",
	}, []string{"event_type"})
	reg.MustRegister(published, failed)
	return &PublisherMetrics{published: published, failed: failed}
}

// IncPublished increments the published counter for an event type.
func (m *PublisherMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(eventType).Inc()
}

// IncFailed increments the failed counter for an event type.
func (m *PublisherMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(eventType).Inc()
}
