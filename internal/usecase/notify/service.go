package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"market-pulse/internal/domain/entity"
)

const (
	// DefaultHighConfidenceThreshold is the confidence a polar result must exceed to alert.
	DefaultHighConfidenceThreshold = 0.7

	circuitBreakerThreshold = 5                // consecutive failures before opening
	circuitBreakerTimeout   = 5 * time.Minute  // how long an open channel is skipped
	notificationTimeout     = 30 * time.Second // per send
)

// ChannelHealthStatus represents the health status of a notification channel.
type ChannelHealthStatus struct {
	Name               string     `json:"name"`
	Enabled            bool       `json:"enabled"`
	CircuitBreakerOpen bool       `json:"circuit_breaker_open"`
	DisabledUntil      *time.Time `json:"disabled_until,omitempty"`
}

// Service dispatches alerts and digests. Sends are sequential.
type Service struct {
	channels  []Channel
	threshold float64

	healthMu      sync.RWMutex
	channelHealth map[string]*channelHealth

	now func() time.Time
}

type channelHealth struct {
	consecutiveFailures int
	disabledUntil       time.Time
	mu                  sync.Mutex
}

// NewService creates a notification service. A non-positive threshold
// selects DefaultHighConfidenceThreshold.
func NewService(channels []Channel, highConfidenceThreshold float64) *Service {
	if highConfidenceThreshold <= 0 {
		highConfidenceThreshold = DefaultHighConfidenceThreshold
	}
	s := &Service{
		channels:      channels,
		threshold:     highConfidenceThreshold,
		channelHealth: make(map[string]*channelHealth, len(channels)),
		now:           time.Now,
	}

	enabled := 0
	for _, ch := range channels {
		s.channelHealth[ch.Name()] = &channelHealth{}
		if ch.IsEnabled() {
			enabled++
		}
	}
	SetChannelsEnabled(float64(enabled))
	return s
}

// ShouldAlert reports whether r is polar with confidence above the threshold.
func (s *Service) ShouldAlert(r *entity.SentimentResult) bool {
	return r != nil && r.Label.IsPolar() && r.Confidence > s.threshold
}

// NotifyResults sends an alert for each qualifying result to every enabled
// alert channel and returns the number of results delivered to at least one
// channel. Failures are logged and never abort the batch.
func (s *Service) NotifyResults(ctx context.Context, results []entity.SentimentResult) int {
	channels := s.alertChannels()
	sent := 0

	for i := range results {
		r := &results[i]
		if !s.ShouldAlert(r) {
			continue
		}
		RecordAlertQualified()
		if len(channels) == 0 {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		delivered := false
		for _, ch := range channels {
			err := s.send(ctx, ch, "alert", func(ctx context.Context) error {
				return ch.SendAlert(ctx, r)
			})
			if err == nil {
				delivered = true
			}
		}
		if delivered {
			sent++
		}
	}

	if sent > 0 {
		slog.Info("alerts sent", slog.Int("count", sent))
	}
	return sent
}

// SendDigest delivers d to every enabled digest channel. It returns nil if
// at least one channel succeeded.
func (s *Service) SendDigest(ctx context.Context, d *entity.DailyDigest) error {
	if d == nil {
		return ErrInvalidDigest
	}
	channels := s.digestChannels()
	if len(channels) == 0 {
		return ErrNoDigestChannel
	}

	delivered := 0
	var lastErr error
	for _, ch := range channels {
		err := s.send(ctx, ch, "digest", func(ctx context.Context) error {
			return ch.SendDigest(ctx, d)
		})
		if err != nil {
			lastErr = err
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return fmt.Errorf("%w: %v", ErrDigestNotDelivered, lastErr)
	}
	slog.Info("daily digest sent",
		slog.Int("channels", delivered),
		slog.Int("articles", d.Stats.Total))
	return nil
}

// send runs one delivery through the channel's breaker.
func (s *Service) send(ctx context.Context, ch Channel, kind string, fn func(context.Context) error) error {
	health := s.getChannelHealth(ch.Name())

	health.mu.Lock()
	if s.now().Before(health.disabledUntil) {
		until := health.disabledUntil
		health.mu.Unlock()
		slog.Warn("channel temporarily disabled due to circuit breaker",
			slog.String("channel", ch.Name()),
			slog.Time("disabled_until", until))
		RecordDropped(ch.Name(), "circuit_open")
		return ErrCircuitBreakerOpen
	}
	health.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, notificationTimeout)
	defer cancel()

	start := time.Now()
	RecordDispatch(ch.Name(), kind)
	err := fn(ctx)
	duration := time.Since(start)

	health.mu.Lock()
	if err != nil {
		health.consecutiveFailures++
		if health.consecutiveFailures >= circuitBreakerThreshold {
			health.disabledUntil = s.now().Add(circuitBreakerTimeout)
			slog.Error("circuit breaker opened for channel",
				slog.String("channel", ch.Name()),
				slog.Int("consecutive_failures", health.consecutiveFailures))
			RecordCircuitBreakerOpen(ch.Name())
		}
	} else {
		health.consecutiveFailures = 0
	}
	health.mu.Unlock()

	if err != nil {
		RecordFailure(ch.Name(), kind, duration)
		slog.Warn("channel notification failed",
			slog.String("channel", ch.Name()),
			slog.String("kind", kind),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return err
	}
	RecordSuccess(ch.Name(), kind, duration)
	slog.Debug("channel notification sent",
		slog.String("channel", ch.Name()),
		slog.String("kind", kind),
		slog.Duration("send_duration", duration))
	return nil
}

func (s *Service) alertChannels() []AlertChannel {
	var out []AlertChannel
	for _, ch := range s.channels {
		if a, ok := ch.(AlertChannel); ok && ch.IsEnabled() {
			out = append(out, a)
		}
	}
	return out
}

func (s *Service) digestChannels() []DigestChannel {
	var out []DigestChannel
	for _, ch := range s.channels {
		if d, ok := ch.(DigestChannel); ok && ch.IsEnabled() {
			out = append(out, d)
		}
	}
	return out
}

func (s *Service) getChannelHealth(name string) *channelHealth {
	s.healthMu.RLock()
	h, ok := s.channelHealth[name]
	s.healthMu.RUnlock()
	if ok {
		return h
	}

	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	if h, ok = s.channelHealth[name]; !ok {
		h = &channelHealth{}
		s.channelHealth[name] = h
	}
	return h
}

// GetChannelHealth returns the breaker state of every configured channel.
func (s *Service) GetChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	now := s.now()

	for _, ch := range s.channels {
		health := s.getChannelHealth(ch.Name())

		health.mu.Lock()
		var disabledUntil *time.Time
		open := now.Before(health.disabledUntil)
		if open {
			until := health.disabledUntil
			disabledUntil = &until
		}
		health.mu.Unlock()

		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: open,
			DisabledUntil:      disabledUntil,
		})
	}
	return statuses
}
