package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that a send was attempted on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidResult indicates a nil sentiment result.
	ErrInvalidResult = errors.New("invalid sentiment result")

	// ErrInvalidDigest indicates a nil digest.
	ErrInvalidDigest = errors.New("invalid digest")

	// ErrCircuitBreakerOpen indicates that the channel is temporarily disabled
	// after consecutive failures.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")

	// ErrNoDigestChannel indicates that no enabled channel accepts the digest.
	ErrNoDigestChannel = errors.New("no digest channel enabled")

	// ErrDigestNotDelivered indicates that every digest channel failed.
	ErrDigestNotDelivered = errors.New("digest was not delivered to any channel")
)
