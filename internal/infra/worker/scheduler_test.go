package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"market-pulse/internal/usecase/pipeline"
	"market-pulse/internal/usecase/sentiment"
)

type fakeJobs struct {
	mu        sync.Mutex
	cycles    int
	reports   int
	cycleErr  error
	block     chan struct{}
	entered   chan struct{}
	deadline  bool
	reportErr error
}

func (f *fakeJobs) RunCycle(ctx context.Context) (*pipeline.CycleStats, error) {
	f.mu.Lock()
	f.cycles++
	_, f.deadline = ctx.Deadline()
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return &pipeline.CycleStats{
		Summary:    sentiment.RunSummary{Analyzed: 4, Failed: 1},
		AlertsSent: 2,
	}, f.cycleErr
}

func (f *fakeJobs) SendDailyReport(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports++
	return f.reportErr
}

func newTestScheduler(t *testing.T, jobs Jobs) *Scheduler {
	t.Helper()
	cfg := DefaultConfig()
	s, err := NewScheduler(context.Background(), jobs, &cfg, isolatedMetrics(t), discardLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error: %v", err)
	}
	return s
}

func TestScheduler_RunAnalysis(t *testing.T) {
	jobs := &fakeJobs{}
	s := newTestScheduler(t, jobs)

	s.RunAnalysis()

	if jobs.cycles != 1 {
		t.Errorf("cycles = %d, want 1", jobs.cycles)
	}
	if !jobs.deadline {
		t.Error("cycle context has no deadline")
	}
	if got := testutil.ToFloat64(s.metrics.JobRunsTotal.WithLabelValues(JobAnalysis, "success")); got != 1 {
		t.Errorf("success runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.ArticlesProcessedTotal); got != 4 {
		t.Errorf("articles = %v, want 4", got)
	}
	if got := testutil.ToFloat64(s.metrics.AlertsSentTotal); got != 2 {
		t.Errorf("alerts = %v, want 2", got)
	}
}

func TestScheduler_FailureIsRecordedAndNotFatal(t *testing.T) {
	jobs := &fakeJobs{cycleErr: errors.New("upstream down sk-ant-secret123"), reportErr: errors.New("smtp")}
	s := newTestScheduler(t, jobs)

	s.RunAnalysis()
	s.RunAnalysis()
	s.RunDailyReport()

	if jobs.cycles != 2 {
		t.Errorf("cycles = %d, want 2", jobs.cycles)
	}
	if got := testutil.ToFloat64(s.metrics.JobRunsTotal.WithLabelValues(JobAnalysis, "failure")); got != 2 {
		t.Errorf("analysis failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(s.metrics.JobRunsTotal.WithLabelValues(JobDailyReport, "failure")); got != 1 {
		t.Errorf("report failures = %v, want 1", got)
	}
}

func TestScheduler_SkipsOverlappingAnalysis(t *testing.T) {
	jobs := &fakeJobs{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := newTestScheduler(t, jobs)

	done := make(chan struct{})
	go func() {
		s.RunAnalysis()
		close(done)
	}()
	<-jobs.entered

	s.RunAnalysis()
	close(jobs.block)
	<-done

	if jobs.cycles != 1 {
		t.Errorf("cycles = %d, want 1", jobs.cycles)
	}
	if got := testutil.ToFloat64(s.metrics.JobRunsTotal.WithLabelValues(JobAnalysis, "skipped")); got != 1 {
		t.Errorf("skipped = %v, want 1", got)
	}
}

func TestScheduler_NextRun(t *testing.T) {
	s := newTestScheduler(t, &fakeJobs{})
	loc, _ := time.LoadLocation("Asia/Kolkata")

	next := s.NextRun(JobDailyReport).In(loc)
	if next.Hour() != 18 || next.Minute() != 0 {
		t.Errorf("next report = %v, want 18:00 IST", next)
	}
	if until := time.Until(s.NextRun(JobAnalysis)); until <= 0 || until > 2*time.Hour+time.Second {
		t.Errorf("next analysis in %v, want within 2h", until)
	}
	if !s.NextRun("unknown").IsZero() {
		t.Error("unknown job should have zero next run")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler(t, &fakeJobs{})
	s.Start()

	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("Stop() did not complete")
	}
}

func TestScheduler_CancelledParentSkipsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := &fakeJobs{}
	cfg := DefaultConfig()
	s, err := NewScheduler(ctx, jobs, &cfg, isolatedMetrics(t), discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	s.RunAnalysis()
	if jobs.cycles != 0 {
		t.Errorf("cycles = %d, want 0", jobs.cycles)
	}
}

func TestNewScheduler_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Mars/Olympus"
	if _, err := NewScheduler(context.Background(), &fakeJobs{}, &cfg, isolatedMetrics(t), discardLogger()); err == nil {
		t.Error("expected timezone error")
	}

	cfg = DefaultConfig()
	cfg.DailyReportTime = "later"
	if _, err := NewScheduler(context.Background(), &fakeJobs{}, &cfg, isolatedMetrics(t), discardLogger()); err == nil {
		t.Error("expected report time error")
	}
}
