// Package notify decides which sentiment results deserve an instant alert
// and dispatches alerts and the daily digest across the configured
// channels, guarding each channel with a consecutive-failure breaker.
package notify

import (
	"context"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/infra/notifier"
)

// Channel is a notification destination. A channel supports alerts, the
// digest, or both, by also implementing AlertChannel or DigestChannel.
type Channel interface {
	// Name is the lowercase identifier used in logs, metrics and /health/channels.
	Name() string
	IsEnabled() bool
}

// AlertChannel receives instant alerts.
type AlertChannel interface {
	Channel
	SendAlert(ctx context.Context, r *entity.SentimentResult) error
}

// DigestChannel receives the daily digest.
type DigestChannel interface {
	Channel
	SendDigest(ctx context.Context, d *entity.DailyDigest) error
}

// channel adapts the infra notifiers to Channel. Unset capabilities are nil.
type channel struct {
	name    string
	enabled bool
	alert   notifier.AlertNotifier
	digest  notifier.DigestNotifier
}

func (c *channel) Name() string    { return c.name }
func (c *channel) IsEnabled() bool { return c.enabled }

type alertChannel struct{ *channel }

func (c alertChannel) SendAlert(ctx context.Context, r *entity.SentimentResult) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if r == nil {
		return ErrInvalidResult
	}
	return c.alert.NotifyAlert(ctx, r)
}

type digestChannel struct{ *channel }

func (c digestChannel) SendDigest(ctx context.Context, d *entity.DailyDigest) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if d == nil {
		return ErrInvalidDigest
	}
	return c.digest.NotifyDigest(ctx, d)
}

type fullChannel struct {
	alertChannel
	digestChannel
}

func (c fullChannel) Name() string    { return c.alertChannel.name }
func (c fullChannel) IsEnabled() bool { return c.alertChannel.enabled }

// NewSlackChannel creates the Slack alert and digest channel. A disabled
// channel is backed by notifier.NoOp.
func NewSlackChannel(config notifier.SlackConfig) Channel {
	var n interface {
		notifier.AlertNotifier
		notifier.DigestNotifier
	} = notifier.NoOp{}
	if config.Enabled {
		n = notifier.NewSlackNotifier(config)
	}
	c := &channel{name: "slack", enabled: config.Enabled, alert: n, digest: n}
	return fullChannel{alertChannel{c}, digestChannel{c}}
}

// NewDiscordChannel creates the Discord alert and digest channel.
func NewDiscordChannel(config notifier.DiscordConfig) Channel {
	var n interface {
		notifier.AlertNotifier
		notifier.DigestNotifier
	} = notifier.NoOp{}
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	}
	c := &channel{name: "discord", enabled: config.Enabled, alert: n, digest: n}
	return fullChannel{alertChannel{c}, digestChannel{c}}
}

// NewEmailChannel creates the digest-only email channel.
func NewEmailChannel(config notifier.EmailConfig) Channel {
	var n notifier.DigestNotifier = notifier.NoOp{}
	if config.Enabled {
		n = notifier.NewEmailNotifier(config)
	}
	return digestChannel{&channel{name: "email", enabled: config.Enabled, digest: n}}
}

// NewDesktopChannel creates the alert-only desktop channel.
func NewDesktopChannel(enabled bool) Channel {
	var n notifier.AlertNotifier = notifier.NoOp{}
	if enabled {
		n = notifier.NewDesktopNotifier()
	}
	return alertChannel{&channel{name: "desktop", enabled: enabled, alert: n}}
}
