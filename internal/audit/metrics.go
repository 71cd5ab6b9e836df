package audit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeWritten = "written"
	outcomeFailed  = "failed"
)

// Metrics holds Prometheus metrics for audit writes.
type Metrics struct {
	Records      *prometheus.CounterVec
	WriteSeconds prometheus.Histogram
}

// NewMetrics registers audit metrics on reg. A nil reg builds unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Records: f.NewCounterVec(prometheus.CounterOpts{
			Name: "edge_audit_records_total",
			Help: "Audit record write attempts by event type and outcome",
		}, []string{"event_type", "outcome"}),
		WriteSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "edge_audit_write_seconds",
			Help:    "Latency of audit store writes",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
}

func (m *Metrics) observe(eventType EventType, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := outcomeWritten
	if err != nil {
		outcome = outcomeFailed
	}
	m.Records.WithLabelValues(string(eventType), outcome).Inc()
	m.WriteSeconds.Observe(d.Seconds())
}
