// Package notifier delivers sentiment alerts and daily digests to external
// channels: Slack and Discord webhooks, SMTP email and desktop
// notifications. Every delivery is a single attempt; callers track failures.
package notifier

import (
	"context"

	"market-pulse/internal/domain/entity"
)

// AlertNotifier sends an instant notification for one high-confidence result.
type AlertNotifier interface {
	NotifyAlert(ctx context.Context, r *entity.SentimentResult) error
}

// DigestNotifier sends the end-of-day report.
type DigestNotifier interface {
	NotifyDigest(ctx context.Context, d *entity.DailyDigest) error
}

// NoOp accepts every notification and does nothing.
type NoOp struct{}

func (NoOp) NotifyAlert(context.Context, *entity.SentimentResult) error { return nil }
func (NoOp) NotifyDigest(context.Context, *entity.DailyDigest) error    { return nil }
