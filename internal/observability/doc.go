// Package observability groups the logging, metrics and tracing helpers
// shared by the worker and the CLI.
//
// Subpackages:
//   - logging: slog construction and context propagation of the cycle id
//   - metrics: Prometheus collectors for the sentiment pipeline and HTTP API
//   - tracing: OpenTelemetry tracer and HTTP middleware
//   - slo: per-cycle service level gauges (scoring success, duration, freshness)
//
// Example usage:
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	ctx, span := tracing.GetTracer().Start(ctx, "pipeline.cycle")
//	defer span.End()
//	metrics.RecordArticleScored("POSITIVE", true)
package observability
