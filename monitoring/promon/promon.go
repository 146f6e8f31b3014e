// Package promon is a Prometheus-backed Monitoring implementation,
// grounded on the teacher's example/orbit_mon: job outcome counters,
// a duration histogram and a status gauge, exported via
// promhttp.Handler.
package promon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"

	"github.com/nordgate/relay"
)

// Mon wraps a set of Prometheus collectors, one observation per
// SaveMetrics call.
type Mon struct {
	success  *prometheus.CounterVec
	canceled *prometheus.CounterVec
	duration *prometheus.HistogramVec
	status   *prometheus.GaugeVec

	reg *prometheus.Registry
}

// New constructs a Mon with its own private registry so tests and
// multiple Pools in one process never collide on global
// registration, the way prometheus.MustRegister against the default
// registry would.
func New() *Mon {
	reg := prometheus.NewRegistry()
	m := &Mon{
		success: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_job_success_total",
				Help: "Total number of jobs that finished without cancellation.",
			},
			[]string{"job_id"},
		),
		canceled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_job_canceled_total",
				Help: "Total number of jobs that finished canceled.",
			},
			[]string{"job_id"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_job_duration_seconds",
				Help:    "Job execution duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job_id"},
		),
		status: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "relay_job_status",
				Help: "Current job state bit-set (see relay.StateXxx constants).",
			},
			[]string{"job_id"},
		),
		reg: reg,
	}
	reg.MustRegister(m.success, m.canceled, m.duration, m.status)
	return m
}

// SaveMetrics records snap against the Prometheus collectors.
func (m *Mon) SaveMetrics(snap relay.JobSnapshot) {
	id := snap.JobID
	m.status.WithLabelValues(id).Set(float64(snap.StateBits))

	if snap.StateBits&relay.StateFinished == 0 {
		return
	}
	if !snap.FinishedAt.IsZero() && !snap.StartedAt.IsZero() {
		m.duration.WithLabelValues(id).Observe(snap.FinishedAt.Sub(snap.StartedAt).Seconds())
	}
	if snap.StateBits&relay.StateCancel != 0 {
		m.canceled.WithLabelValues(id).Inc()
	} else {
		m.success.WithLabelValues(id).Inc()
	}
}

// GetMetrics is a best-effort in-process view; Prometheus scraping
// via Handler is the intended read path, so this returns an empty
// map, matching the teacher's own PrometheusMonitoring.GetMetrics.
func (m *Mon) GetMetrics() map[string]relay.JobSnapshot {
	return map[string]relay.JobSnapshot{}
}

// Handler returns the HTTP handler to mount at /metrics.
func (m *Mon) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

var _ relay.Monitoring = (*Mon)(nil)
