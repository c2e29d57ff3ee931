// Package metrics Prometheus 指标，通过 /metrics 暴露
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 入站请求
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swfilms_http_requests_total",
			Help: "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swfilms_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// 上游请求 (SWAPI / TMDB / YouTube)
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swfilms_upstream_requests_total",
			Help: "Total number of outbound upstream requests",
		},
		[]string{"host", "outcome"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swfilms_upstream_request_duration_seconds",
			Help:    "Outbound upstream request latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"host"},
	)

	// 0=closed, 1=open, 2=half-open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swfilms_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// 请求日志落库
	LogWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swfilms_log_writes_total",
			Help: "Total number of request log writes by outcome",
		},
		[]string{"outcome"},
	)

	PaginationPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swfilms_pagination_pages_total",
			Help: "Total number of upstream pages walked",
		},
		[]string{"endpoint"},
	)
)
