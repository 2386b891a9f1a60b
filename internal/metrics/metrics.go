// Package metrics provides Prometheus-based metrics collection for portsweep.
// It tracks probe volume, open-port discoveries, batch and scan durations,
// and the number of in-flight connection attempts, and can expose them over
// HTTP for scrape-based monitoring of long-running scans.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all portsweep metrics.
	namespace = "portsweep"

	// Subsystems.
	subsystemScan  = "scan"
	subsystemProbe = "probe"
)

// Metrics holds all Prometheus metric collectors.
type Metrics struct {
	scansTotal    *prometheus.CounterVec
	scanDuration  prometheus.Histogram
	batchDuration prometheus.Histogram
	portsProbed   prometheus.Counter
	openPorts     prometheus.Counter
	probeErrors   *prometheus.CounterVec
	inFlight      prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new metrics instance with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemScan,
				Name:      "total",
				Help:      "Total number of scan runs by final status",
			},
			[]string{"status"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystemScan,
				Name:      "duration_seconds",
				Help:      "Duration of full scan runs in seconds",
				Buckets:   []float64{0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 300.0, 600.0},
			},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystemScan,
				Name:      "batch_duration_seconds",
				Help:      "Duration of individual scan batches in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		portsProbed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemProbe,
				Name:      "ports_total",
				Help:      "Total number of ports probed",
			},
		),
		openPorts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemProbe,
				Name:      "open_ports_total",
				Help:      "Total number of ports found open",
			},
		),
		probeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemProbe,
				Name:      "errors_total",
				Help:      "Total number of failed probes by error code",
			},
			[]string{"code"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystemProbe,
				Name:      "in_flight",
				Help:      "Number of connection attempts currently in flight",
			},
		),
	}

	registry.MustRegister(
		m.scansTotal,
		m.scanDuration,
		m.batchDuration,
		m.portsProbed,
		m.openPorts,
		m.probeErrors,
		m.inFlight,
	)

	// Register standard Go and process collectors for runtime visibility.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the Prometheus registry backing this instance.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncScans increments the scan counter for the given final status.
func (m *Metrics) IncScans(status string) {
	m.scansTotal.WithLabelValues(status).Inc()
}

// ObserveScanDuration records the duration of a full scan run.
func (m *Metrics) ObserveScanDuration(d time.Duration) {
	m.scanDuration.Observe(d.Seconds())
}

// ObserveBatchDuration records the duration of a single batch.
func (m *Metrics) ObserveBatchDuration(d time.Duration) {
	m.batchDuration.Observe(d.Seconds())
}

// AddPortsProbed adds to the probed-ports counter.
func (m *Metrics) AddPortsProbed(n int) {
	m.portsProbed.Add(float64(n))
}

// IncOpenPorts increments the open-ports counter.
func (m *Metrics) IncOpenPorts() {
	m.openPorts.Inc()
}

// IncProbeErrors increments the probe error counter for an error code.
func (m *Metrics) IncProbeErrors(code string) {
	m.probeErrors.WithLabelValues(code).Inc()
}

// IncInFlightProbes increments the in-flight probe gauge.
func (m *Metrics) IncInFlightProbes() {
	m.inFlight.Inc()
}

// DecInFlightProbes decrements the in-flight probe gauge.
func (m *Metrics) DecInFlightProbes() {
	m.inFlight.Dec()
}

// Global metrics instance - can be replaced for testing.
var defaultMetrics = New()

// SetDefault sets the default metrics instance.
func SetDefault(m *Metrics) {
	defaultMetrics = m
}

// Default returns the default metrics instance.
func Default() *Metrics {
	return defaultMetrics
}

// IncScans increments the scan counter on the default instance.
func IncScans(status string) {
	defaultMetrics.IncScans(status)
}

// ObserveScanDuration records a scan duration on the default instance.
func ObserveScanDuration(d time.Duration) {
	defaultMetrics.ObserveScanDuration(d)
}

// ObserveBatchDuration records a batch duration on the default instance.
func ObserveBatchDuration(d time.Duration) {
	defaultMetrics.ObserveBatchDuration(d)
}

// AddPortsProbed adds to the probed-ports counter on the default instance.
func AddPortsProbed(n int) {
	defaultMetrics.AddPortsProbed(n)
}

// IncOpenPorts increments the open-ports counter on the default instance.
func IncOpenPorts() {
	defaultMetrics.IncOpenPorts()
}

// IncProbeErrors increments the probe error counter on the default instance.
func IncProbeErrors(code string) {
	defaultMetrics.IncProbeErrors(code)
}

// IncInFlightProbes increments the in-flight gauge on the default instance.
func IncInFlightProbes() {
	defaultMetrics.IncInFlightProbes()
}

// DecInFlightProbes decrements the in-flight gauge on the default instance.
func DecInFlightProbes() {
	defaultMetrics.DecInFlightProbes()
}
