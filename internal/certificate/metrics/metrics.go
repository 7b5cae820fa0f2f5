// Package metrics exposes Prometheus instrumentation for the certificate
// module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	issued        prometheus.Counter
	revoked       prometheus.Counter
	verifications *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		issued: factory.NewCounter(prometheus.CounterOpts{
			Name: "agricert_certificates_issued_total",
			Help: "Total certificates issued.",
		}),
		revoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "agricert_certificates_revoked_total",
			Help: "Total certificates revoked.",
		}),
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agricert_certificate_verifications_total",
			Help: "Public verification checks by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncIssued()                     { m.issued.Inc() }
func (m *Metrics) IncRevoked()                    { m.revoked.Inc() }
func (m *Metrics) IncVerifications(result string) { m.verifications.WithLabelValues(result).Inc() }
