package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for notification delivery.
type Metrics struct {
	Delivered *prometheus.CounterVec
	Failed    *prometheus.CounterVec
	Dropped   *prometheus.CounterVec
	Queued    prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Delivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_audit_delivered_total",
			Help: "Notifications delivered to a sink, by kind",
		}, []string{"kind"}),
		Failed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_audit_failed_total",
			Help: "Notification deliveries that a sink rejected, by kind",
		}, []string{"kind"}),
		Dropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_audit_dropped_total",
			Help: "Notifications dropped before delivery, by reason",
		}, []string{"reason"}),
		Queued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_audit_queued_total",
			Help: "Notifications accepted into the async buffer",
		}),
	}
}

func (m *Metrics) IncDelivered(kind string) {
	if m == nil {
		return
	}
	m.Delivered.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncFailed(kind string) {
	if m == nil {
		return
	}
	m.Failed.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncDropped(reason string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncQueued() {
	if m == nil {
		return
	}
	m.Queued.Inc()
}
