package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "address_validator"

// Metrics Prometheus collectors of the validator. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	validations     *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "validations_total",
				Help:      "Address validations by outcome status and unverifiable reason",
			},
			[]string{"status", "reason"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cache_lookups_total",
				Help:      "Result cache lookups by result (hit or miss)",
			},
			[]string{"result"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path", "status"},
		),
	}

	for _, c := range []prometheus.Collector{m.validations, m.cacheLookups, m.requestDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveValidation counts one validation outcome. An empty reason is
// recorded as "none".
func (m *Metrics) ObserveValidation(status, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.validations.WithLabelValues(status, reason).Inc()
}

// ObserveCacheLookup counts one cache lookup
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveRequest records one HTTP request. path should be the route
// template, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, status).Observe(seconds)
}
