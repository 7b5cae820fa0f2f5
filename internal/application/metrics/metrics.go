// Package metrics exposes Prometheus instrumentation for the application
// module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	submissions    prometheus.Counter
	reviewsStarted prometheus.Counter
	decisions      *prometheus.CounterVec
	decideDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		submissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "agricert_application_submissions_total",
			Help: "Total application submissions, including re-submissions.",
		}),
		reviewsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "agricert_application_reviews_started_total",
			Help: "Total applications taken under review.",
		}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agricert_application_decisions_total",
			Help: "Review decisions by outcome.",
		}, []string{"outcome"}),
		decideDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "agricert_application_decision_duration_seconds",
			Help:    "Latency of the review decision use cases.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncSubmissions()             { m.submissions.Inc() }
func (m *Metrics) IncReviewsStarted()          { m.reviewsStarted.Inc() }
func (m *Metrics) IncDecisions(outcome string) { m.decisions.WithLabelValues(outcome).Inc() }
func (m *Metrics) ObserveDecision(start time.Time) {
	m.decideDuration.Observe(time.Since(start).Seconds())
}
