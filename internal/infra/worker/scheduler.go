package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"market-pulse/internal/handler/http/respond"
	"market-pulse/internal/usecase/pipeline"
)

// Jobs is what the scheduler runs.
type Jobs interface {
	RunCycle(ctx context.Context) (*pipeline.CycleStats, error)
	SendDailyReport(ctx context.Context) error
}

// Scheduler runs the analysis cycle on a fixed interval and the daily digest
// at a wall clock time. A failing run is logged and counted; the next tick
// still fires. Runs of the same job never overlap.
type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	cfg     *WorkerConfig
	metrics *WorkerMetrics
	logger  *slog.Logger
	loc     *time.Location

	// ctx is the parent of every run; cancelling it aborts in-flight runs.
	ctx context.Context

	analysisMu sync.Mutex
	reportMu   sync.Mutex

	analysisID cron.EntryID
	reportID   cron.EntryID
}

// NewScheduler registers both jobs. It does not start ticking; call Start.
func NewScheduler(ctx context.Context, jobs Jobs, cfg *WorkerConfig, metrics *WorkerMetrics, logger *slog.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("NewScheduler: timezone: %w", err)
	}
	reportSpec, err := cfg.ReportSchedule()
	if err != nil {
		return nil, fmt.Errorf("NewScheduler: report time: %w", err)
	}

	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs:    jobs,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		loc:     loc,
		ctx:     ctx,
	}

	if s.analysisID, err = s.cron.AddFunc(cfg.AnalysisSchedule(), s.RunAnalysis); err != nil {
		return nil, fmt.Errorf("NewScheduler: analysis job: %w", err)
	}
	if s.reportID, err = s.cron.AddFunc(reportSpec, s.RunDailyReport); err != nil {
		return nil, fmt.Errorf("NewScheduler: report job: %w", err)
	}
	return s, nil
}

// Start begins ticking in the cron's own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started",
		slog.String("analysis_schedule", s.cfg.AnalysisSchedule()),
		slog.String("daily_report_time", s.cfg.DailyReportTime),
		slog.String("timezone", s.cfg.Timezone),
		slog.Time("next_analysis", s.NextRun(JobAnalysis)),
		slog.Time("next_report", s.NextRun(JobDailyReport)))
}

// Stop stops scheduling new runs. The returned context is done once the
// runs in flight have returned.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("scheduler stopping")
	return s.cron.Stop()
}

// NextRun returns the next activation of job after now, or the zero time
// when job is unknown.
func (s *Scheduler) NextRun(job string) time.Time {
	var id cron.EntryID
	switch job {
	case JobAnalysis:
		id = s.analysisID
	case JobDailyReport:
		id = s.reportID
	default:
		return time.Time{}
	}
	entry := s.cron.Entry(id)
	if entry.Schedule == nil {
		return time.Time{}
	}
	return entry.Schedule.Next(time.Now().In(s.loc))
}

// RunAnalysis runs one analysis cycle bounded by CycleTimeout.
// It is safe to call directly, for example to run a cycle on start.
func (s *Scheduler) RunAnalysis() {
	if !s.analysisMu.TryLock() {
		s.metrics.RecordJobRun(JobAnalysis, "skipped")
		s.logger.Warn("analysis cycle still running, skipping")
		return
	}
	defer s.analysisMu.Unlock()

	s.run(JobAnalysis, func(ctx context.Context) error {
		stats, err := s.jobs.RunCycle(ctx)
		if stats != nil {
			s.metrics.RecordArticlesProcessed(stats.Summary.Analyzed)
			s.metrics.RecordAlertsSent(stats.AlertsSent)
		}
		return err
	})
}

// RunDailyReport builds and sends today's digest bounded by CycleTimeout.
func (s *Scheduler) RunDailyReport() {
	if !s.reportMu.TryLock() {
		s.metrics.RecordJobRun(JobDailyReport, "skipped")
		s.logger.Warn("daily report still running, skipping")
		return
	}
	defer s.reportMu.Unlock()

	s.run(JobDailyReport, s.jobs.SendDailyReport)
}

func (s *Scheduler) run(job string, fn func(context.Context) error) {
	if s.ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.metrics.RecordJobRun(job, "started")
	s.logger.Info("job started", slog.String("job", job))

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.CycleTimeout)
	defer cancel()

	err := fn(ctx)
	s.metrics.RecordJobDuration(job, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordJobRun(job, "failure")
		s.logger.Error("job failed",
			slog.String("job", job),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", respond.SanitizeError(err)))
		return
	}

	s.metrics.RecordJobRun(job, "success")
	s.metrics.RecordLastSuccess(job)
	s.logger.Info("job completed",
		slog.String("job", job),
		slog.Duration("duration", time.Since(start)))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ logger *slog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
