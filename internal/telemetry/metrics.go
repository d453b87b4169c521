package telemetry

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"speedbench/internal/benchmark"
)

const metricsNamespace = "speedbench"

// Invocation outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
	OutcomeParse   = "parse_error"
)

// SweepMetrics collects per-invocation measurements in a private registry.
type SweepMetrics struct {
	Registry    *prometheus.Registry
	Invocations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Speedup     *prometheus.GaugeVec
}

// NewSweepMetrics creates and registers the sweep metrics.
func NewSweepMetrics() *SweepMetrics {
	m := &SweepMetrics{Registry: prometheus.NewRegistry()}

	m.Invocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "invocations_total",
			Help:      "Benchmark binary invocations by variant and outcome",
		},
		[]string{"variant", "outcome"},
	)

	m.Duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "invocation_duration_seconds",
			Help:      "Wall-clock duration of benchmark invocations",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"variant"},
	)

	m.Speedup = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "speedup",
			Help:      "Recorded speedup by variant and thread count",
		},
		[]string{"variant", "threads"},
	)

	m.Registry.MustRegister(m.Invocations, m.Duration, m.Speedup)
	return m
}

// Observe implements benchmark.Observer.
func (m *SweepMetrics) Observe(ev benchmark.Event) {
	variant := strconv.Itoa(ev.Variant)
	m.Invocations.WithLabelValues(variant, outcome(ev.Err)).Inc()
	m.Duration.WithLabelValues(variant).Observe(ev.Elapsed.Seconds())
	if ev.Err == nil && ev.Run != nil {
		m.Speedup.WithLabelValues(variant, strconv.Itoa(ev.Threads)).Set(ev.Run.Speedup)
	}
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *SweepMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

func outcome(err error) string {
	var timeoutErr *benchmark.TimeoutError
	var parseErr *benchmark.ParseError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &timeoutErr):
		return OutcomeTimeout
	case errors.As(err, &parseErr):
		return OutcomeParse
	default:
		return OutcomeFailed
	}
}
