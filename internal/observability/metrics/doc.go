// Package metrics provides the Prometheus collectors for the sentiment pipeline.
//
// Metric families:
//   - HTTP metrics for the read API served next to /metrics
//   - News retrieval (queries, hits, filter outcomes)
//   - Scoring (classifications by label, classifier latency)
//   - Persistence (cache writes, vector store operations, cache size)
//
// All metrics are registered with the Prometheus default registry.
//
// Example usage:
//
//	start := time.Now()
//	cls, err := classifier.Classify(ctx, text)
//	metrics.RecordClassification("huggingface", time.Since(start), err == nil)
package metrics
