package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sealdrop"

// PrometheusRecorder exports metrics through a private registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	authEvents       *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec
	transferBytes    *prometheus.CounterVec
	transferDuration *prometheus.HistogramVec
	transferFailures *prometheus.CounterVec
	compression      prometheus.Histogram
}

// NewPrometheus creates a recorder with Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &PrometheusRecorder{
		registry: reg,
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Auth gate operations by event and outcome.",
		}, []string{"event", "outcome"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"route"}),
		transferBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_bytes_total",
			Help:      "Plaintext bytes moved, by direction.",
		}, []string{"direction"}),
		transferDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_duration_seconds",
			Help:      "Time spent sealing or opening a transfer.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction"}),
		transferFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_failures_total",
			Help:      "Failed transfers by direction and reason.",
		}, []string{"direction", "reason"}),
		compression: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compression_ratio_percent",
			Help:      "Compression ratio of uploads.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}

	reg.MustRegister(p.authEvents, p.rateLimited, p.transferBytes, p.transferDuration, p.transferFailures, p.compression)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// IncAuthEvent counts an auth gate outcome.
func (p *PrometheusRecorder) IncAuthEvent(event, outcome string) {
	p.authEvents.WithLabelValues(event, outcome).Inc()
}

// IncRateLimited counts a rejected request.
func (p *PrometheusRecorder) IncRateLimited(route string) {
	p.rateLimited.WithLabelValues(route).Inc()
}

// ObserveTransfer records a completed transfer.
func (p *PrometheusRecorder) ObserveTransfer(direction string, originalBytes int64, duration time.Duration) {
	p.transferBytes.WithLabelValues(direction).Add(float64(originalBytes))
	p.transferDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

// ObserveCompressionRatio records an upload's ratio.
func (p *PrometheusRecorder) ObserveCompressionRatio(ratio float64) {
	p.compression.Observe(ratio)
}

// IncTransferFailure counts a failed transfer.
func (p *PrometheusRecorder) IncTransferFailure(direction, reason string) {
	p.transferFailures.WithLabelValues(direction, reason).Inc()
}
