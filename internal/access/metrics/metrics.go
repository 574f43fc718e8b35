package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the access recorder. A nil *Metrics
// records nothing.
type Metrics struct {
	Recorded     *prometheus.CounterVec
	HintMismatch prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Recorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_access_events_recorded_total",
			Help: "Access events recorded, by data type and authorization outcome",
		}, []string{"data_type", "authorized"}),
		HintMismatch: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_access_consent_hint_mismatch_total",
			Help: "Access events whose consent hint did not individually authorize the access",
		}),
	}
}

func (m *Metrics) IncRecorded(dataType string, authorized bool) {
	if m == nil {
		return
	}
	label := "false"
	if authorized {
		label = "true"
	}
	m.Recorded.WithLabelValues(dataType, label).Inc()
}

func (m *Metrics) IncHintMismatch() {
	if m == nil {
		return
	}
	m.HintMismatch.Inc()
}
