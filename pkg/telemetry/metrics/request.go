package metrics

import (
	"time"

	"bastion-hq/palisade/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks HTTP request metrics for the intake API.
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	responseSize    *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers HTTP request metrics.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	m := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, route, and status code",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration by method and route",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"method", "path"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_in_flight",
				Help:      "HTTP requests currently being served",
			},
		),
		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response body size by route",
				// 256B to 256KB
				Buckets: prometheus.ExponentialBuckets(256, 4, 6),
			},
			[]string{"path"},
		),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.inFlight,
		m.responseSize,
	)

	return m
}

// RecordRequest records one completed HTTP request.
func (m *RequestMetrics) RecordRequest(method, path, status string, duration time.Duration, responseBytes int) {
	m.requestsTotal.WithLabelValues(method, path, status).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if responseBytes > 0 {
		m.responseSize.WithLabelValues(path).Observe(float64(responseBytes))
	}
}

// IncInFlight increments the in-flight gauge.
func (m *RequestMetrics) IncInFlight() {
	m.inFlight.Inc()
}

// DecInFlight decrements the in-flight gauge.
func (m *RequestMetrics) DecInFlight() {
	m.inFlight.Dec()
}
