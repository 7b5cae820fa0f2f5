package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the event pipeline.
type Metrics struct {
	Published       *prometheus.CounterVec
	PublishFailures *prometheus.CounterVec
}

// NewMetrics registers the event pipeline metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agricert_events_published_total",
			Help: "Total domain events successfully handed to the sink",
		}, []string{"event_type"}),
		PublishFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agricert_events_publish_failures_total",
			Help: "Total domain events the sink refused",
		}, []string{"event_type"}),
	}
}

func (m *Metrics) IncPublished(eventType string) {
	m.Published.WithLabelValues(eventType).Inc()
}

func (m *Metrics) IncPublishFailures(eventType string) {
	m.PublishFailures.WithLabelValues(eventType).Inc()
}
