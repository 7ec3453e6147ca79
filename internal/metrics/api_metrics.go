package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics содержит HTTP-метрики справочного API-сервера.
type APIMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewAPIMetrics создаёт метрики сервера с дефолтным registerer-ом.
func NewAPIMetrics() *APIMetrics {
	return newAPIMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newAPIMetricsWithRegisterer(registerer prometheus.Registerer) *APIMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &APIMetrics{
		requestsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sales_api_requests_total",
			Help: "Total number of HTTP requests handled by the sales API",
		}, []string{"method", "route", "code"}),
		requestDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "sales_api_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"method", "route"}),
	}
}

// RecordRequest фиксирует обработанный HTTP-запрос.
func (m *APIMetrics) RecordRequest(method, route string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, codeLabel(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func codeLabel(code int) string {
	// Группируем по классам, чтобы не раздувать кардинальность.
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
