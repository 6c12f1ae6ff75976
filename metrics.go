package edgecontext

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names reported by edge contexts.
const (
	MetricTokenValidations       = "edgecontext_token_validations_total"
	MetricTokenValidationSeconds = "edgecontext_token_validation_seconds"
	MetricHeaderDecodeFailures   = "edgecontext_header_decode_failures_total"
)

// Metrics is a generic metrics interface for edge contexts.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	ObserveHistogram(name string, value float64, tags map[string]string)
}

// NoopMetrics is a default metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) IncCounter(string, map[string]string)                {}
func (NoopMetrics) ObserveHistogram(string, float64, map[string]string) {}

var metricHelp = map[string]string{
	MetricTokenValidations:       "Authentication tokens validated, by result.",
	MetricTokenValidationSeconds: "Time spent validating authentication tokens.",
	MetricHeaderDecodeFailures:   "Edge request headers that could not be decoded.",
}

// PrometheusMetrics implements the Metrics interface using Prometheus.
// Collectors are registered on first use; the label names of a metric are
// fixed by its first observation.
type PrometheusMetrics struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetrics returns a Metrics implementation registering its
// collectors with registerer, or with prometheus.DefaultRegisterer when nil.
func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		registerer: registerer,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (m *PrometheusMetrics) IncCounter(name string, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help(name, "counter")}, keys(tags))
		vec = registerOrExisting(m.registerer, vec)
		m.counters[name] = vec
	}
	m.mu.Unlock()

	vec.With(tags).Inc()
}

func (m *PrometheusMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    help(name, "histogram"),
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, keys(tags))
		vec = registerOrExisting(m.registerer, vec)
		m.histograms[name] = vec
	}
	m.mu.Unlock()

	vec.With(tags).Observe(value)
}

// registerOrExisting lets several PrometheusMetrics share a registry.
func registerOrExisting[C prometheus.Collector](registerer prometheus.Registerer, c C) C {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func help(name, kind string) string {
	if h, ok := metricHelp[name]; ok {
		return h
	}
	return strings.ReplaceAll(name, "_", " ") + " " + kind
}

func keys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
