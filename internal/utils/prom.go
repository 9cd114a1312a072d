package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	PipelineRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Full ingest+merge computations (cache misses).",
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_cache_lookups_total",
		Help: "Pipeline cache lookups by cache name and result.",
	}, []string{"cache", "result"})

	RowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_rows_dropped_total",
		Help: "Source rows excluded during ingestion, by reason.",
	}, []string{"reason"})
)
