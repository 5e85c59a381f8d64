// Package tracing provides OpenTelemetry tracing integration.
//
// The worker creates one span per analysis cycle with child spans per stage
// (fetch, analyze, persist, alert) and one span per HTTP request served by
// the read API. No exporter is configured here; the process-wide provider
// decides where spans go.
//
// Example usage:
//
//	ctx, span := tracing.StartSpan(ctx, "pipeline.cycle", attribute.String("cycle_id", id))
//	defer tracing.EndSpan(span, err)
package tracing
