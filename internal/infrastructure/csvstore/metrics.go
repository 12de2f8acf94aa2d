package csvstore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts store activity. A nil *Metrics records nothing.
type Metrics struct {
	writes         *prometheus.CounterVec
	backupFailures *prometheus.CounterVec
}

// NewMetrics creates the store collectors and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lunchdesk_store_writes_total",
				Help: "Total number of successful collection file writes",
			},
			[]string{"collection", "op"},
		),
		backupFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lunchdesk_backup_failures_total",
				Help: "Total number of writes whose snapshot step failed",
			},
			[]string{"collection"},
		),
	}
	reg.MustRegister(m.writes, m.backupFailures)
	return m
}

func (m *Metrics) observeWrite(collection, op string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(collection, op).Inc()
}

func (m *Metrics) observeBackupFailure(collection string) {
	if m == nil {
		return
	}
	m.backupFailures.WithLabelValues(collection).Inc()
}
