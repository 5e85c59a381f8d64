package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule validates a five-field cron expression or a
// descriptor such as "@every 2h" using the robfig/cron/v3 parser.
//
// Example:
//
//	err := ValidateCronSchedule("0 18 * * *")
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// ValidateTimezone validates an IANA timezone name ("Asia/Kolkata", "UTC").
// It fails when the name is unknown or tzdata is missing from the image.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}
	return nil
}

// ValidateClockTime validates a 24-hour "HH:MM" wall clock time.
func ValidateClockTime(clock string) error {
	if _, _, err := ParseClockTime(clock); err != nil {
		return err
	}
	return nil
}

// ParseClockTime splits a 24-hour "HH:MM" string into hour and minute.
func ParseClockTime(clock string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time '%s': expected HH:MM", clock)
	}
	return t.Hour(), t.Minute(), nil
}

// ValidateDuration validates that min <= duration <= max.
func ValidateDuration(duration, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}
	if duration < min {
		return fmt.Errorf("duration %v is below minimum %v", duration, min)
	}
	if duration > max {
		return fmt.Errorf("duration %v exceeds maximum %v", duration, max)
	}
	return nil
}

// ValidateIntRange validates that min <= value <= max.
//
// Example:
//
//	// health port must be unprivileged
//	err := ValidateIntRange(port, 1024, 65535)
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}
	if value < min {
		return fmt.Errorf("value %d is below minimum %d", value, min)
	}
	if value > max {
		return fmt.Errorf("value %d exceeds maximum %d", value, max)
	}
	return nil
}

// ValidatePositiveDuration validates that a duration is strictly positive.
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}
	return nil
}

// ValidateUnitInterval validates that v lies in [0, 1].
func ValidateUnitInterval(v float64) error {
	if v != v || v < 0 || v > 1 {
		return fmt.Errorf("value must be within [0, 1], got %v", v)
	}
	return nil
}
