// Package observability exposes Prometheus metrics for the zonecheck engine.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Check outcomes recorded by ChecksTotal.
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeLocation   = "location_error"
	OutcomeConfig     = "config_incomplete"
	OutcomeHTTP       = "http_error"
	OutcomeNetwork    = "network_error"
	OutcomeMalformed  = "malformed_response"
	OutcomeRejected   = "rejected"
	OutcomeStorage    = "storage_error"
	OutcomeSaved      = "saved"
	OutcomeUnexpected = "error"
)

// Metrics holds the Prometheus counters, histograms, and gauges for zonecheck.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ChecksTotal    *prometheus.CounterVec // labels: outcome
	CheckDuration  prometheus.Histogram
	ChecksInFlight prometheus.Gauge

	// Configuration metrics.
	ConfigSaves    *prometheus.CounterVec // labels: outcome={saved,rejected,network_error,storage_error,error}
	ConfigComplete prometheus.Gauge
	ConfigChanges  prometheus.Counter
}

// NewMetrics creates all metrics and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		ChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zonecheck",
			Name:      "checks_total",
			Help:      "Security checks by terminal outcome.",
		}, []string{"outcome"}),
		CheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zonecheck",
			Name:      "check_duration_seconds",
			Help:      "Duration of a security check from locating to its terminal state.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ChecksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zonecheck",
			Name:      "checks_in_flight",
			Help:      "1 while a security check is running, 0 otherwise.",
		}),
		ConfigSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zonecheck",
			Name:      "config_saves_total",
			Help:      "Configuration save attempts by outcome.",
		}, []string{"outcome"}),
		ConfigComplete: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zonecheck",
			Name:      "config_complete",
			Help:      "1 when the configuration allows a security check, 0 otherwise.",
		}),
		ConfigChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zonecheck",
			Name:      "config_changes_total",
			Help:      "Configuration changes observed by the watcher.",
		}),
	}

	reg.MustRegister(
		m.ChecksTotal,
		m.CheckDuration,
		m.ChecksInFlight,
		m.ConfigSaves,
		m.ConfigComplete,
		m.ConfigChanges,
	)

	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// RecordCheck records the terminal outcome and duration of a check.
func (m *Metrics) RecordCheck(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ChecksTotal.WithLabelValues(outcome).Inc()
	m.CheckDuration.Observe(d.Seconds())
}

// SetCheckInFlight marks whether a check is running.
func (m *Metrics) SetCheckInFlight(running bool) {
	if m == nil {
		return
	}
	m.ChecksInFlight.Set(boolToFloat(running))
}

// RecordConfigSave records the outcome of a configuration save.
func (m *Metrics) RecordConfigSave(outcome string) {
	if m == nil {
		return
	}
	m.ConfigSaves.WithLabelValues(outcome).Inc()
}

// SetConfigComplete records the result of the configuration gate.
func (m *Metrics) SetConfigComplete(complete bool) {
	if m == nil {
		return
	}
	m.ConfigComplete.Set(boolToFloat(complete))
}

// RecordConfigChange counts a configuration change seen by a watcher.
func (m *Metrics) RecordConfigChange() {
	if m == nil {
		return
	}
	m.ConfigChanges.Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
