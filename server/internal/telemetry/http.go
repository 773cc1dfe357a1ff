package telemetry

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics counts and times requests per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  prometheus.Histogram
}

// NewHTTPMetrics registers <prefix>_http_requests_total{route,code} and
// <prefix>_http_request_duration_seconds on r.
func NewHTTPMetrics(r *Registry, prefix string) *HTTPMetrics {
	return &HTTPMetrics{
		requests: r.NewCounterVec(prefix+"_http_requests_total",
			"HTTP requests by route and status code.", "route", "code"),
		latency: r.NewHistogram(prefix+"_http_request_duration_seconds",
			"HTTP request latency in seconds.", prometheus.ExponentialBuckets(0.0005, 4, 9)),
	}
}

// Wrap instruments next under the fixed route label. Use the registered
// pattern, not the request path, to keep label cardinality bounded.
func (m *HTTPMetrics) Wrap(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := prometheus.NewTimer(m.latency)
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		m.requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		timer.ObserveDuration()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}
