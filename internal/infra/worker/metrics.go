package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"market-pulse/internal/pkg/config"
)

// Job names used as metric labels.
const (
	JobAnalysis    = "analysis"
	JobDailyReport = "daily_report"
)

// WorkerMetrics provides Prometheus metrics for the worker component.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// job execution metrics.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp
//   - worker_config_validation_errors_total
//   - worker_config_fallbacks_total
//   - worker_config_fallback_active
//
// Worker-specific metrics:
//   - worker_job_runs_total{job,status}: runs by status (started, success, failure, skipped)
//   - worker_job_duration_seconds{job}: run duration
//   - worker_job_articles_processed_total: articles scored across cycles
//   - worker_job_alerts_sent_total: alerts delivered across cycles
//   - worker_job_last_success_timestamp{job}: Unix time of the last success
//
// NewWorkerMetrics registers with the default registry and may be called
// once per process.
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal           *prometheus.CounterVec
	JobDurationSeconds     *prometheus.HistogramVec
	ArticlesProcessedTotal prometheus.Counter
	AlertsSentTotal        prometheus.Counter
	LastSuccessTimestamp   *prometheus.GaugeVec
}

// NewWorkerMetrics creates and registers the worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of scheduled job runs by job and status",
		}, []string{"job", "status"}),

		JobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of scheduled job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800}, // 1s .. 30m
		}, []string{"job"}),

		ArticlesProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_job_articles_processed_total",
			Help: "Total number of articles scored across all analysis cycles",
		}),

		AlertsSentTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_job_alerts_sent_total",
			Help: "Total number of alerts delivered across all analysis cycles",
		}),

		LastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run by job",
		}, []string{"job"}),
	}
}

// RecordJobRun increments the run counter for job and status.
func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

// RecordJobDuration observes a run duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// RecordArticlesProcessed adds count scored articles.
func (m *WorkerMetrics) RecordArticlesProcessed(count int) {
	m.ArticlesProcessedTotal.Add(float64(count))
}

// RecordAlertsSent adds count delivered alerts.
func (m *WorkerMetrics) RecordAlertsSent(count int) {
	m.AlertsSentTotal.Add(float64(count))
}

// RecordLastSuccess stamps the current time for job.
func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.LastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
