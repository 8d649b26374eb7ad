package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name", "reason"},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_cache_operation_duration_seconds",
			Help:    "Time to complete cache operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"cache_name", "operation"},
	)

	CacheItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: Namespace + "_cache_items_total",
			Help: "Current number of items in cache",
		},
		[]string{"cache_name"},
	)

	PageFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_page_fetch_duration_seconds",
			Help:    "Time to fetch one page of a query from the backend",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"query_type", "source"},
	)

	PageFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_page_fetch_errors_total",
			Help: "Total number of backend page fetch errors",
		},
		[]string{"query_type", "source"},
	)

	PagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_pages_fetched_total",
			Help: "Total number of pages requested by paginated streams",
		},
	)

	StreamsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_streams_completed_total",
			Help: "Paginated query streams by terminal state",
		},
		[]string{"state"},
	)

	PanelRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_panel_refreshes_total",
			Help: "Background panel refreshes by outcome",
		},
		[]string{"panel", "state"},
	)
)
