// Package prom exports gate and aggregation metrics to Prometheus.
package prom

import (
	"strconv"
	"time"

	states "github.com/goliatone/go-states"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "states"

// Option configures a Recorder.
type Option func(*recorderConfig)

type recorderConfig struct {
	namespace string
	buckets   []float64
}

// WithNamespace overrides the metric name prefix.
func WithNamespace(namespace string) Option {
	return func(cfg *recorderConfig) {
		if namespace != "" {
			cfg.namespace = namespace
		}
	}
}

// WithBuckets sets the aggregation duration histogram buckets, in seconds.
func WithBuckets(buckets ...float64) Option {
	return func(cfg *recorderConfig) {
		if len(buckets) > 0 {
			cfg.buckets = append([]float64(nil), buckets...)
		}
	}
}

// Recorder implements states.MetricsRecorder.
type Recorder struct {
	gateDecisions *prometheus.CounterVec
	gatePending   *prometheus.GaugeVec
	aggregations  *prometheus.HistogramVec
	records       *prometheus.CounterVec
}

var _ states.MetricsRecorder = (*Recorder)(nil)

// New builds a Recorder and registers its collectors with reg. A nil reg
// leaves the collectors unregistered.
func New(reg prometheus.Registerer, opts ...Option) (*Recorder, error) {
	cfg := recorderConfig{
		namespace: DefaultNamespace,
		buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	r := &Recorder{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Readiness gate decisions by kind and outcome.",
		}, []string{"kind", "ready"}),
		gatePending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Subsystem: "gate",
			Name:      "pending_namespaces",
			Help:      "Namespaces still pending at the last gate decision.",
		}, []string{"kind"}),
		aggregations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Subsystem: "aggregation",
			Name:      "duration_seconds",
			Help:      "Time spent collecting records.",
			Buckets:   cfg.buckets,
		}, []string{"kind"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: "aggregation",
			Name:      "records_total",
			Help:      "Records produced by aggregations.",
		}, []string{"kind"}),
	}
	if reg == nil {
		return r, nil
	}
	for _, c := range r.Collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNew is New that panics on registration errors.
func MustNew(reg prometheus.Registerer, opts ...Option) *Recorder {
	r, err := New(reg, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Collectors returns the underlying collectors.
func (r *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.gateDecisions, r.gatePending, r.aggregations, r.records}
}

// ObserveGate implements states.MetricsRecorder.
func (r *Recorder) ObserveGate(kind string, ready bool, pending int) {
	r.gateDecisions.WithLabelValues(kind, strconv.FormatBool(ready)).Inc()
	r.gatePending.WithLabelValues(kind).Set(float64(pending))
}

// ObserveAggregation implements states.MetricsRecorder.
func (r *Recorder) ObserveAggregation(kind string, records int, duration time.Duration) {
	r.aggregations.WithLabelValues(kind).Observe(duration.Seconds())
	r.records.WithLabelValues(kind).Add(float64(records))
}
