package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one process on a dedicated registry
type Metrics struct {
	registry       *prometheus.Registry
	uploads        *prometheus.CounterVec
	uploadDuration *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "djp_uploads_total",
				Help: "# of upload requests by outcome",
			},
			[]string{"outcome"},
		),
		uploadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "djp_upload_duration_seconds",
				Help:    "Histogram of the duration of each Google Drive step.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "djp_http_requests_total",
				Help: "# of HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		),
	}

	m.registry.MustRegister(
		m.uploads,
		m.uploadDuration,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// UploadFinished counts one publish attempt
func (m *Metrics) UploadFinished(outcome string) {
	m.uploads.WithLabelValues(outcome).Inc()
}

// StepDuration observes how long one publish step took
func (m *Metrics) StepDuration(step string, d time.Duration) {
	m.uploadDuration.WithLabelValues(step).Observe(d.Seconds())
}

// RequestServed counts one HTTP response
func (m *Metrics) RequestServed(method string, code int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
