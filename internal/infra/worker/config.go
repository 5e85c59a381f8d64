package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"market-pulse/internal/pkg/config"
)

// WorkerConfig holds the timing and server settings of the worker process.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Invalid environment values never stop the worker: each falls back to its
// default, a warning is logged and the fallback metrics are updated.
type WorkerConfig struct {
	// AnalysisIntervalHours is the spacing between analysis cycles.
	// Range: 1-24
	// Default: 2
	AnalysisIntervalHours int

	// DailyReportTime is the wall clock time of the daily digest, "HH:MM".
	// Default: "18:00"
	DailyReportTime string

	// AnalysisCron replaces the AnalysisIntervalHours schedule when set.
	// Five-field cron or a descriptor such as "@hourly".
	// Default: ""
	AnalysisCron string

	// Timezone is the IANA name used for the digest schedule and for
	// "today" in reports.
	// Default: "Asia/Kolkata"
	Timezone string

	// CycleTimeout bounds one analysis cycle or digest run.
	// Range: 1m-4h
	// Default: 30 minutes
	CycleTimeout time.Duration

	// HealthPort serves /health and /health/ready.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int

	// MetricsPort serves /metrics and the read API.
	// Range: 1024-65535
	// Default: 9090
	MetricsPort int

	// RunOnStart runs one analysis cycle immediately after startup.
	// Default: true
	RunOnStart bool

	// StartupSelfTest scores a reference article before scheduling and
	// aborts startup when it fails.
	// Default: true
	StartupSelfTest bool
}

// DefaultConfig returns a WorkerConfig with the production defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		AnalysisIntervalHours: 2,
		DailyReportTime:       "18:00",
		Timezone:              "Asia/Kolkata",
		CycleTimeout:          30 * time.Minute,
		HealthPort:            9091,
		MetricsPort:           9090,
		RunOnStart:            true,
		StartupSelfTest:       true,
	}
}

// AnalysisSchedule returns the cron spec of the analysis job.
func (c *WorkerConfig) AnalysisSchedule() string {
	if c.AnalysisCron != "" {
		return c.AnalysisCron
	}
	return fmt.Sprintf("@every %dh", c.AnalysisIntervalHours)
}

// ReportSchedule returns the five-field cron spec of the daily digest job.
func (c *WorkerConfig) ReportSchedule() (string, error) {
	hour, minute, err := config.ParseClockTime(c.DailyReportTime)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// Location loads the configured time zone.
func (c *WorkerConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Validate checks every field and returns all failures joined.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateIntRange(c.AnalysisIntervalHours, 1, 24); err != nil {
		errs = append(errs, fmt.Errorf("analysis interval hours: %w", err))
	}
	if err := config.ValidateCronSchedule(c.AnalysisSchedule()); err != nil {
		errs = append(errs, fmt.Errorf("analysis schedule: %w", err))
	}
	if err := config.ValidateClockTime(c.DailyReportTime); err != nil {
		errs = append(errs, fmt.Errorf("daily report time: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.CycleTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("cycle timeout: %w", err))
	}
	if err := validatePort(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := validatePort(c.MetricsPort); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ, both are %d", c.HealthPort))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

func validatePort(p int) error { return config.ValidateIntRange(p, 1024, 65535) }

// LoadConfigFromEnv loads the worker configuration from the environment
// using the fail-open strategy: the returned config is always valid.
//
// Environment variables:
//   - ANALYSIS_INTERVAL_HOURS: integer 1-24 (default: 2)
//   - ANALYSIS_SCHEDULE: cron expression overriding the interval (default: unset)
//   - DAILY_REPORT_TIME: HH:MM (default: "18:00")
//   - WORKER_TIMEZONE: IANA timezone name (default: "Asia/Kolkata")
//   - CYCLE_TIMEOUT: duration, 1m-4h (default: "30m")
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
//   - METRICS_PORT: integer 1024-65535 (default: 9090)
//   - RUN_ON_START: boolean (default: true)
//   - STARTUP_SELF_TEST: boolean (default: true)
//
// Warning log format:
//
//	logger.Warn("Configuration fallback applied",
//	    slog.String("field", "Timezone"),
//	    slog.String("warning", "Invalid WORKER_TIMEZONE='Mars/Olympus': ..."))
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	track := func(field, label string, warnings []string, applied bool) {
		if !applied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(label)
		metrics.RecordFallback(label)
		for _, warning := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	interval := config.LoadEnvInt("ANALYSIS_INTERVAL_HOURS", cfg.AnalysisIntervalHours, func(v int) error {
		return config.ValidateIntRange(v, 1, 24)
	})
	cfg.AnalysisIntervalHours = interval.Value
	track("AnalysisIntervalHours", "analysis_interval_hours", interval.Warnings, interval.FallbackApplied)

	schedule := config.LoadEnvWithFallback("ANALYSIS_SCHEDULE", cfg.AnalysisCron, config.ValidateCronSchedule)
	cfg.AnalysisCron = schedule.Value
	track("AnalysisCron", "analysis_schedule", schedule.Warnings, schedule.FallbackApplied)

	reportTime := config.LoadEnvWithFallback("DAILY_REPORT_TIME", cfg.DailyReportTime, config.ValidateClockTime)
	cfg.DailyReportTime = reportTime.Value
	track("DailyReportTime", "daily_report_time", reportTime.Warnings, reportTime.FallbackApplied)

	tz := config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = tz.Value
	track("Timezone", "timezone", tz.Warnings, tz.FallbackApplied)

	timeout := config.LoadEnvDuration("CYCLE_TIMEOUT", cfg.CycleTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 4*time.Hour)
	})
	cfg.CycleTimeout = timeout.Value
	track("CycleTimeout", "cycle_timeout", timeout.Warnings, timeout.FallbackApplied)

	healthPort := config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, validatePort)
	cfg.HealthPort = healthPort.Value
	track("HealthPort", "health_port", healthPort.Warnings, healthPort.FallbackApplied)

	metricsPort := config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, func(v int) error {
		if err := validatePort(v); err != nil {
			return err
		}
		if v == cfg.HealthPort {
			return fmt.Errorf("port %d is already used by the health server", v)
		}
		return nil
	})
	cfg.MetricsPort = metricsPort.Value
	track("MetricsPort", "metrics_port", metricsPort.Warnings, metricsPort.FallbackApplied)

	runOnStart := config.LoadEnvBool("RUN_ON_START", cfg.RunOnStart)
	cfg.RunOnStart = runOnStart.Value
	track("RunOnStart", "run_on_start", runOnStart.Warnings, runOnStart.FallbackApplied)

	selfTest := config.LoadEnvBool("STARTUP_SELF_TEST", cfg.StartupSelfTest)
	cfg.StartupSelfTest = selfTest.Value
	track("StartupSelfTest", "startup_self_test", selfTest.Warnings, selfTest.FallbackApplied)

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
