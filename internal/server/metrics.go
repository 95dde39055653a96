package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notefig_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notefig_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Extraction metrics
	extractRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notefig_extract_requests_total",
			Help: "Total number of extraction requests",
		},
		[]string{"transport", "status"}, // transport: http, websocket
	)

	extractProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notefig_extract_processing_duration_seconds",
			Help:    "Extraction processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"transport"},
	)

	extractRegionsDetected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notefig_extract_regions_detected",
			Help:    "Number of regions detected per image",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50},
		},
		[]string{"transport"},
	)

	extractFiguresPersisted = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notefig_extract_figures_persisted",
			Help:    "Number of figure crops persisted per image",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50},
		},
		[]string{"transport"},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notefig_upload_size_bytes",
			Help:    "Size of uploaded payloads in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notefig_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notefig_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
