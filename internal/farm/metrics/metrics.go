package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the farm module.
type Metrics struct {
	FarmsRegistered        prometheus.Counter
	ReviewsStarted         prometheus.Counter
	VerificationsCompleted *prometheus.CounterVec
	StartReviewDuration    prometheus.Histogram
}

// New registers all farm module metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FarmsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "agricert_farms_registered_total",
			Help: "Total number of farms registered",
		}),
		ReviewsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "agricert_farm_reviews_started_total",
			Help: "Total number of farm reviews started",
		}),
		VerificationsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agricert_farm_verifications_completed_total",
			Help: "Total number of farm verifications completed, by outcome",
		}, []string{"status"}),
		StartReviewDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "agricert_farm_start_review_duration_seconds",
			Help:    "Duration of StartReview operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncFarmsRegistered records a successful registration.
func (m *Metrics) IncFarmsRegistered() {
	m.FarmsRegistered.Inc()
}

// IncReviewsStarted records a review entering under_review.
func (m *Metrics) IncReviewsStarted() {
	m.ReviewsStarted.Inc()
}

// IncVerificationsCompleted records a terminal verification outcome.
func (m *Metrics) IncVerificationsCompleted(status string) {
	m.VerificationsCompleted.WithLabelValues(status).Inc()
}

// ObserveStartReview records the duration of a StartReview operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveStartReview(start time.Time) {
	m.StartReviewDuration.Observe(time.Since(start).Seconds())
}
