package metrics

import (
	"time"
)

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordNewsQuery records one news API search.
func RecordNewsQuery(duration time.Duration, success bool) {
	NewsQueriesTotal.WithLabelValues(status(success)).Inc()
	NewsQueryDuration.Observe(duration.Seconds())
}

// RecordArticlesFetched adds count raw hits for origin ("newsapi" or "rss").
func RecordArticlesFetched(origin string, count int) {
	if count <= 0 {
		return
	}
	ArticlesFetchedTotal.WithLabelValues(origin).Add(float64(count))
}

// RecordArticlesDropped adds count dropped articles for reason.
func RecordArticlesDropped(reason string, count int) {
	if count <= 0 {
		return
	}
	ArticlesDroppedTotal.WithLabelValues(reason).Add(float64(count))
}

// RecordArticleScored records the outcome of scoring one article.
// label is ignored (recorded as "none") when success is false.
func RecordArticleScored(label string, success bool) {
	if !success {
		label = "none"
	}
	ArticlesScoredTotal.WithLabelValues(label, status(success)).Inc()
}

// RecordClassification records the latency of one classifier call.
func RecordClassification(classifier string, duration time.Duration, success bool) {
	ClassificationDuration.WithLabelValues(classifier, status(success)).Observe(duration.Seconds())
}

// RecordContextAugmented counts an article scored with similar-news context.
func RecordContextAugmented() {
	ContextAugmentedTotal.Inc()
}

// RecordCacheWrite records one sentiment cache upsert.
func RecordCacheWrite(success bool) {
	CacheWritesTotal.WithLabelValues(status(success)).Inc()
}

// UpdateCacheRows sets the sentiment cache row gauge.
func UpdateCacheRows(count int) {
	CacheRows.Set(float64(count))
}

// RecordVectorOperation records a vector store call.
// Operation is one of "embed", "upsert", "search" or "count".
func RecordVectorOperation(operation string, success bool) {
	VectorOperationsTotal.WithLabelValues(operation, status(success)).Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "upsert_sentiment", "list_today").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records one request served by the read API.
func RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
