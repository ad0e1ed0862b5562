// Package metrics exposes Prometheus collectors for configuration resolution
// and the transformer chain. A nil *Metrics records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Transform outcome labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics groups the collectors used by the streamer.
type Metrics struct {
	resolutions       *prometheus.CounterVec
	transforms        *prometheus.CounterVec
	transformDuration prometheus.Histogram
}

// New creates the collectors and registers them on reg.
// Returns an error if a collector with the same name is already registered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubstream_config_resolutions_total",
				Help: "Reader configuration resolutions by source (session, default, fallback).",
			},
			[]string{"source"},
		),
		transforms: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubstream_transforms_total",
				Help: "Transformer chain runs by result.",
			},
			[]string{"result"},
		),
		transformDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pubstream_transform_duration_seconds",
				Help:    "Duration of transformer chain runs.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
	}

	for _, c := range []prometheus.Collector{m.resolutions, m.transforms, m.transformDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveResolution counts one configuration resolution.
func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(source).Inc()
}

// ObserveTransform records one chain run.
func (m *Metrics) ObserveTransform(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.transforms.WithLabelValues(result).Inc()
	m.transformDuration.Observe(d.Seconds())
}
