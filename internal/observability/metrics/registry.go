// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track the read API served by the worker.
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Retrieval metrics.
var (
	// NewsQueriesTotal counts news API searches by status (success, failure)
	NewsQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_queries_total",
			Help: "Total number of news API queries issued",
		},
		[]string{"status"},
	)

	// NewsQueryDuration measures a single news API search
	NewsQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "news_query_duration_seconds",
			Help:    "Time taken by a single news API query",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		},
	)

	// ArticlesFetchedTotal counts raw hits per origin (newsapi, rss)
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of raw articles fetched",
		},
		[]string{"origin"},
	)

	// ArticlesDroppedTotal counts articles removed before scoring by reason
	// (duplicate, invalid, irrelevant, over_limit)
	ArticlesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_dropped_total",
			Help: "Total number of articles dropped before scoring",
		},
		[]string{"reason"},
	)
)

// Scoring metrics.
var (
	// ArticlesScoredTotal counts scoring outcomes by label and status
	ArticlesScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_scored_total",
			Help: "Total number of articles scored",
		},
		[]string{"label", "status"},
	)

	// ClassificationDuration measures classifier latency
	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classification_duration_seconds",
			Help:    "Time taken by one classifier call",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"classifier", "status"},
	)

	// ContextAugmentedTotal counts articles whose text was augmented with similar-news context
	ContextAugmentedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_context_augmented_total",
			Help: "Total number of articles scored with similar-news context",
		},
	)
)

// Persistence metrics.
var (
	// CacheWritesTotal counts sentiment cache upserts by status
	CacheWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_cache_writes_total",
			Help: "Total number of sentiment cache upserts",
		},
		[]string{"status"},
	)

	// CacheRows tracks the number of rows in the sentiment cache
	CacheRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentiment_cache_rows",
			Help: "Number of rows in the sentiment cache",
		},
	)

	// VectorOperationsTotal counts vector store calls by operation and status
	VectorOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_store_operations_total",
			Help: "Total number of vector store operations",
		},
		[]string{"operation", "status"},
	)

	// DBQueryDuration measures database query duration by operation
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"operation"},
	)
)
