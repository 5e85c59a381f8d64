package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RateConfig describes an outbound request budget: at most one request per
// Interval with bursts of up to Burst requests.
type RateConfig struct {
	Interval time.Duration
	Burst    int
}

// LoadRateConfig reads <PREFIX>_RATE_INTERVAL and <PREFIX>_RATE_BURST.
//
// Invalid values are logged and replaced by the corresponding field of def,
// so a bad override never blocks startup.
//
// Example:
//
//	// NEWSAPI_RATE_INTERVAL=1s NEWSAPI_RATE_BURST=1
//	rc := LoadRateConfig("NEWSAPI", RateConfig{Interval: time.Second, Burst: 1})
func LoadRateConfig(prefix string, def RateConfig) RateConfig {
	prefix = strings.ToUpper(strings.TrimSuffix(prefix, "_"))
	cfg := RateConfig{
		Interval: GetEnvDuration(prefix+"_RATE_INTERVAL", def.Interval),
		Burst:    GetEnvInt(prefix+"_RATE_BURST", def.Burst),
	}

	if err := cfg.Validate(); err != nil {
		slog.Warn("invalid rate configuration, using defaults",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()))
		return def
	}
	return cfg
}

// Validate checks that the interval is non-negative and the burst positive.
// A zero interval means "unlimited".
func (c RateConfig) Validate() error {
	if c.Interval < 0 {
		return fmt.Errorf("interval must be non-negative, got %v", c.Interval)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", c.Burst)
	}
	return nil
}
