// Package pipeline runs one analysis cycle end to end: fetch, score,
// persist, alert. It also sends the daily digest and runs the startup
// self-test.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/observability/logging"
	"market-pulse/internal/observability/metrics"
	"market-pulse/internal/observability/slo"
	"market-pulse/internal/observability/tracing"
	"market-pulse/internal/repository"
	"market-pulse/internal/usecase/fetch"
	"market-pulse/internal/usecase/report"
	"market-pulse/internal/usecase/sentiment"
)

// Fetcher returns the articles of one cycle.
type Fetcher interface {
	FetchArticles(ctx context.Context) ([]entity.Article, *fetch.FetchStats)
}

// Analyzer scores articles.
type Analyzer interface {
	AnalyzeArticle(ctx context.Context, a entity.Article) (*entity.SentimentResult, error)
	AnalyzeArticles(ctx context.Context, articles []entity.Article) ([]entity.SentimentResult, sentiment.RunSummary)
}

// Notifier delivers alerts and digests.
type Notifier interface {
	NotifyResults(ctx context.Context, results []entity.SentimentResult) int
	SendDigest(ctx context.Context, d *entity.DailyDigest) error
}

// Reporter builds the daily digest from the cache.
type Reporter interface {
	BuildDailyReport(ctx context.Context, now time.Time) (*entity.DailyDigest, error)
}

// Deps are the collaborators of a Pipeline. Vectors may be nil.
type Deps struct {
	Fetcher  Fetcher
	Analyzer Analyzer
	Cache    repository.SentimentRepository
	Vectors  sentiment.ContextStore
	Notifier Notifier
	Reporter Reporter
}

// CycleStats summarises one RunCycle call.
type CycleStats struct {
	CycleID     string
	StartedAt   time.Time
	Duration    time.Duration
	Fetch       *fetch.FetchStats
	Fetched     int
	Summary     sentiment.RunSummary
	Cached      int
	CacheFailed int
	Vectorized  int
	AlertsSent  int
	// SLOMet is true when the cycle met the scoring objective.
	SLOMet      bool
}

// Pipeline orchestrates the stages. Calls are synchronous; a Pipeline must
// not run two cycles at once.
type Pipeline struct {
	fetcher  Fetcher
	analyzer Analyzer
	cache    repository.SentimentRepository
	vectors  sentiment.ContextStore
	notifier Notifier
	reporter Reporter

	now   func() time.Time
	newID func() string
}

// New creates a Pipeline.
func New(d Deps) *Pipeline {
	return &Pipeline{
		fetcher:  d.Fetcher,
		analyzer: d.Analyzer,
		cache:    d.Cache,
		vectors:  d.Vectors,
		notifier: d.Notifier,
		reporter: d.Reporter,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// RunCycle fetches, scores, persists and alerts. A cycle that finds no
// articles returns empty stats and a nil error. Per-article failures are
// logged and counted; the returned error is non-nil only when the context
// was cancelled or every article failed to score.
func (p *Pipeline) RunCycle(ctx context.Context) (stats *CycleStats, err error) {
	cycleID := p.newID()
	ctx = logging.ContextWithCycleID(ctx, cycleID)
	logger := logging.WithCycleID(ctx, slog.Default())

	ctx, span := tracing.StartSpan(ctx, "pipeline.run_cycle", attribute.String("cycle_id", cycleID))
	defer func() { tracing.EndSpan(span, err) }()

	start := time.Now()
	stats = &CycleStats{CycleID: cycleID, StartedAt: p.now()}
	defer func() { stats.Duration = time.Since(start) }()

	logger.Info("analysis cycle started")

	articles, fetchStats := p.fetcher.FetchArticles(ctx)
	stats.Fetch = fetchStats
	stats.Fetched = len(articles)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("RunCycle: %w", err)
	}
	if len(articles) == 0 {
		stats.SLOMet = slo.RecordCycle(0, 0, time.Since(start), p.now())
		logger.Info("no articles fetched, cycle finished")
		return stats, nil
	}

	results, summary := p.analyzer.AnalyzeArticles(ctx, articles)
	stats.Summary = summary

	p.persist(ctx, logger, results, stats)
	stats.AlertsSent = p.notifier.NotifyResults(ctx, results)

	span.SetAttributes(
		attribute.Int("fetched", stats.Fetched),
		attribute.Int("analyzed", summary.Analyzed),
		attribute.Int("alerts", stats.AlertsSent))
	logger.Info("analysis cycle completed",
		slog.Int("fetched", stats.Fetched),
		slog.Int("analyzed", summary.Analyzed),
		slog.Int("failed", summary.Failed),
		slog.Int("cached", stats.Cached),
		slog.Int("cache_failed", stats.CacheFailed),
		slog.Int("vectorized", stats.Vectorized),
		slog.Int("alerts_sent", stats.AlertsSent),
		slog.Duration("duration", time.Since(start)))

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("RunCycle: %w", err)
	}
	stats.SLOMet = slo.RecordCycle(summary.Analyzed, summary.Failed, time.Since(start), p.now())
	if summary.Analyzed == 0 && summary.Failed > 0 {
		return stats, fmt.Errorf("RunCycle: %w (%d failed)", ErrScoringFailed, summary.Failed)
	}
	return stats, nil
}

// persist writes each result to the cache and then to the vector store.
// Failures are logged; later writes still run.
func (p *Pipeline) persist(ctx context.Context, logger *slog.Logger, results []entity.SentimentResult, stats *CycleStats) {
	vectorsOn := p.vectors != nil && p.vectors.Enabled()

	for i := range results {
		r := &results[i]

		err := p.cache.Upsert(ctx, entity.NewCachedSentiment(r))
		metrics.RecordCacheWrite(err == nil)
		if err != nil {
			stats.CacheFailed++
			logger.Warn("cache write failed",
				slog.String("title", r.Article.Title),
				slog.Any("error", err))
		} else {
			stats.Cached++
		}

		if vectorsOn && p.vectors.Store(ctx, r) {
			stats.Vectorized++
		}
	}

	if n, err := p.cache.Count(ctx); err == nil {
		metrics.UpdateCacheRows(int(n))
	} else {
		logger.Warn("cache count failed", slog.Any("error", err))
	}
}

// SendDailyReport builds today's digest and sends it. A day without
// articles is logged and is not an error.
func (p *Pipeline) SendDailyReport(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.daily_report")
	defer func() { tracing.EndSpan(span, err) }()

	digest, err := p.reporter.BuildDailyReport(ctx, p.now())
	if errors.Is(err, report.ErrNoArticles) {
		slog.Info("no articles to report today")
		return nil
	}
	if err != nil {
		return fmt.Errorf("SendDailyReport: %w", err)
	}

	if err := p.notifier.SendDigest(ctx, digest); err != nil {
		return fmt.Errorf("SendDailyReport: %w", err)
	}
	return nil
}

// Reference article scored by SelfTest.
const (
	selfTestTitle       = "RELIANCE stock surges 10% on strong earnings"
	selfTestDescription = "Company reports record quarterly profits"
)

// SelfTest scores a fixed bullish article and returns the result.
// Callers treat an error as a fatal startup condition.
func (p *Pipeline) SelfTest(ctx context.Context) (*entity.SentimentResult, error) {
	r, err := p.analyzer.AnalyzeArticle(ctx, entity.Article{
		Title:       selfTestTitle,
		Description: selfTestDescription,
		URL:         "https://example.com/self-test",
		Source:      "self-test",
		PublishedAt: p.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSelfTestFailed, err)
	}

	slog.Info("sentiment self-test passed",
		slog.String("label", string(r.Label)),
		slog.Float64("score", r.Score),
		slog.Float64("confidence", r.Confidence),
		slog.Bool("context_used", r.ContextUsed))
	return r, nil
}
