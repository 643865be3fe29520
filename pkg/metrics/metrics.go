package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 指标统一注册到默认 Registry，由 /metrics 暴露
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Duration of in-memory catalog queries",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"resource"},
	)

	CatalogQueryMatched = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_matched_records",
			Help:    "Number of records matched by catalog queries",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"resource"},
	)

	SyncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_records_total",
			Help: "Records upserted from the upstream catalog",
		},
		[]string{"resource"},
	)

	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_runs_total",
			Help: "Upstream sync runs by result",
		},
		[]string{"resource", "result"},
	)

	PermissionMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_mutations_total",
			Help: "Permission mutations applied",
		},
		[]string{"owner_type", "field"},
	)

	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_exceeded_total",
			Help: "Total number of rate limited sync requests",
		},
		[]string{"resource"},
	)
)
