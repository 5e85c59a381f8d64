package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWorkerMetrics(t *testing.T) {
	m := globalTestMetrics
	if m.ConfigMetrics == nil {
		t.Error("ConfigMetrics is nil")
	}
	if m.JobRunsTotal == nil || m.JobDurationSeconds == nil || m.ArticlesProcessedTotal == nil ||
		m.AlertsSentTotal == nil || m.LastSuccessTimestamp == nil {
		t.Error("job metrics not initialized")
	}
}

// isolatedMetrics builds WorkerMetrics on a private registry.
func isolatedMetrics(t *testing.T) *WorkerMetrics {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := &WorkerMetrics{
		JobRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_job_runs_total", Help: "test",
		}, []string{"job", "status"}),
		JobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "test_job_duration_seconds", Help: "test",
		}, []string{"job"}),
		ArticlesProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{Name: "test_articles_total", Help: "test"}),
		AlertsSentTotal:        prometheus.NewCounter(prometheus.CounterOpts{Name: "test_alerts_total", Help: "test"}),
		LastSuccessTimestamp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "test_last_success", Help: "test",
		}, []string{"job"}),
	}
	reg.MustRegister(m.JobRunsTotal, m.JobDurationSeconds, m.ArticlesProcessedTotal, m.AlertsSentTotal, m.LastSuccessTimestamp)
	return m
}

func TestWorkerMetrics_Record(t *testing.T) {
	m := isolatedMetrics(t)

	m.RecordJobRun(JobAnalysis, "success")
	m.RecordJobRun(JobAnalysis, "success")
	m.RecordJobRun(JobDailyReport, "failure")
	m.RecordJobDuration(JobAnalysis, 12.5)
	m.RecordArticlesProcessed(40)
	m.RecordArticlesProcessed(2)
	m.RecordAlertsSent(3)
	m.RecordLastSuccess(JobAnalysis)

	if got := testutil.ToFloat64(m.JobRunsTotal.WithLabelValues(JobAnalysis, "success")); got != 2 {
		t.Errorf("analysis success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.JobRunsTotal.WithLabelValues(JobDailyReport, "failure")); got != 1 {
		t.Errorf("report failure = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.JobDurationSeconds); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(m.ArticlesProcessedTotal); got != 42 {
		t.Errorf("articles = %v, want 42", got)
	}
	if got := testutil.ToFloat64(m.AlertsSentTotal); got != 3 {
		t.Errorf("alerts = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.LastSuccessTimestamp.WithLabelValues(JobAnalysis)); got <= 0 {
		t.Errorf("last success = %v, want > 0", got)
	}
}
