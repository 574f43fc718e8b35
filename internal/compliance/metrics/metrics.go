package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for compliance scanning and scoring. A nil
// *Metrics records nothing.
type Metrics struct {
	Scans              *prometheus.CounterVec
	ScanDuration       prometheus.Histogram
	ViolationsDetected *prometheus.CounterVec
	ViolationsResolved prometheus.Counter
	NoopChecks         *prometheus.CounterVec
	ScoreRecomputed    prometheus.Counter
	ScansSkipped       prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Scans: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_compliance_scans_total",
			Help: "Compliance scans, by outcome",
		}, []string{"outcome"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_compliance_scan_duration_seconds",
			Help:    "Duration of one organization's compliance scan",
			Buckets: prometheus.DefBuckets,
		}),
		ViolationsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_compliance_violations_detected_total",
			Help: "Violations created by scans, by rule type and severity",
		}, []string{"rule_type", "severity"}),
		ViolationsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_compliance_violations_resolved_total",
			Help: "Violations resolved by organization owners or admins",
		}),
		NoopChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_compliance_noop_checks_total",
			Help: "Active rules skipped because no check is registered for their type",
		}, []string{"rule_type"}),
		ScoreRecomputed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_compliance_score_recomputed_total",
			Help: "Compliance score recomputations",
		}),
		ScansSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_compliance_scans_skipped_total",
			Help: "Scheduled scans skipped because another worker held the lease",
		}),
	}
}

func (m *Metrics) ObserveScan(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Scans.WithLabelValues(outcome).Inc()
	m.ScanDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncDetected(ruleType, severity string) {
	if m == nil {
		return
	}
	m.ViolationsDetected.WithLabelValues(ruleType, severity).Inc()
}

func (m *Metrics) IncResolved() {
	if m == nil {
		return
	}
	m.ViolationsResolved.Inc()
}

func (m *Metrics) IncNoop(ruleType string) {
	if m == nil {
		return
	}
	m.NoopChecks.WithLabelValues(ruleType).Inc()
}

func (m *Metrics) IncRecomputed() {
	if m == nil {
		return
	}
	m.ScoreRecomputed.Inc()
}

func (m *Metrics) IncSkipped() {
	if m == nil {
		return
	}
	m.ScansSkipped.Inc()
}
