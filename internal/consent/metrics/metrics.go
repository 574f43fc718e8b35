package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the consent ledger. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Granted       *prometheus.CounterVec
	Revoked       prometheus.Counter
	Expired       prometheus.Counter
	Checks        *prometheus.CounterVec
	CheckDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Granted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_consents_granted_total",
			Help: "Consents granted, by purpose",
		}, []string{"purpose"}),
		Revoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_consents_revoked_total",
			Help: "Consents revoked by their subject",
		}),
		Expired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_consents_expired_total",
			Help: "Consents marked expired by the sweep",
		}),
		Checks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_consent_checks_total",
			Help: "Consent validity checks, by outcome",
		}, []string{"outcome"}),
		CheckDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_consent_check_duration_seconds",
			Help:    "Duration of consent validity checks",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncGranted(purpose string) {
	if m == nil {
		return
	}
	m.Granted.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncRevoked() {
	if m == nil {
		return
	}
	m.Revoked.Inc()
}

func (m *Metrics) AddExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Expired.Add(float64(n))
}

// ObserveCheck records one check outcome and its duration since start.
func (m *Metrics) ObserveCheck(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Checks.WithLabelValues(outcome).Inc()
	m.CheckDuration.Observe(time.Since(start).Seconds())
}
