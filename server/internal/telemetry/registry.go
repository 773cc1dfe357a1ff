package telemetry

import (
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// Registry owns a set of named metrics. Registering a name twice panics.
type Registry struct {
	reg     *prometheus.Registry
	factory promauto.Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	return &Registry{reg: reg, factory: promauto.With(reg)}
}

// NewCounterVec registers a counter partitioned by labels.
func (r *Registry) NewCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return r.factory.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
}

// NewHistogram registers an unlabelled histogram with the given upper bounds.
func (r *Registry) NewHistogram(name, help string, buckets []float64) prometheus.Histogram {
	return r.factory.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets})
}

// NewGaugeFunc registers a gauge whose value is read from fn at scrape time.
func (r *Registry) NewGaugeFunc(name, help string, fn func() float64) prometheus.GaugeFunc {
	return r.factory.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn)
}

// WriteText writes every family in the text exposition format. Vectors with
// no series yet are omitted.
func (r *Registry) WriteText(w io.Writer) error {
	fams, err := r.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range fams {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the registry with content negotiation left to promhttp.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
