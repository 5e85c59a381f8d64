// Package logging provides structured logging utilities with context propagation.
//
// Key features:
//   - JSON output for the worker, text output for the CLI
//   - Cycle id propagation through context.Context
//   - Configurable log levels via LOG_LEVEL
//
// Example usage:
//
//	ctx = logging.ContextWithCycleID(ctx, uuid.NewString())
//	logger := logging.WithCycleID(ctx, slog.Default())
//	logger.Info("cycle started")
package logging
