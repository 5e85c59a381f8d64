package fetch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/observability/metrics"
	"market-pulse/internal/observability/tracing"
)

// Hit origins, used as the metrics label.
const (
	OriginNewsAPI = "newsapi"
	OriginRSS     = "rss"
)

// SearchQuery is one news API request.
type SearchQuery struct {
	Query    string
	From     time.Time
	Language string
	PageSize int
}

// Hit is an article as returned by a search or feed, before validation.
type Hit struct {
	Title       string `validate:"required,ne=[Removed]"`
	Description string
	Content     string
	URL         string `validate:"required,url,max=2048"`
	PublishedAt time.Time
	Source      string
	Origin      string
}

// NewsSearcher runs a single keyword search.
type NewsSearcher interface {
	Search(ctx context.Context, q SearchQuery) ([]Hit, error)
}

// FeedFetcher is an interface for fetching RSS/Atom feeds from a URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]Hit, error)
}

// FetchStats contains statistics about one FetchArticles call.
type FetchStats struct {
	QueriesIssued int
	QueriesFailed int
	FeedsFetched  int
	FeedsFailed   int
	RawHits       int
	Unique        int
	Invalid       int
	Irrelevant    int
	Capped        int
	Returned      int
	Duration      time.Duration
}

// Service provides the fetch stage of a cycle.
type Service struct {
	searcher NewsSearcher
	feeds    FeedFetcher
	limiter  *rate.Limiter
	validate *validator.Validate
	cfg      Config
	keywords Keywords
	now      func() time.Time
}

// NewService creates a fetch Service.
// feeds may be nil when no RSS sources are configured. limiter spaces the
// news API queries; nil means no spacing.
func NewService(searcher NewsSearcher, feeds FeedFetcher, limiter *rate.Limiter, cfg Config) *Service {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Service{
		searcher: searcher,
		feeds:    feeds,
		limiter:  limiter,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cfg:      cfg,
		keywords: cfg.Keywords.Normalized(),
		now:      time.Now,
	}
}

// FetchArticles runs every configured query and feed and returns the unique,
// valid, relevant articles in first-seen order.
//
// Failures of individual queries or feeds are logged and skipped. If all of
// them fail the result is empty; no error is returned. A cancelled context
// stops issuing further requests.
func (s *Service) FetchArticles(ctx context.Context) ([]entity.Article, *FetchStats) {
	logger := slog.Default()
	start := time.Now()
	stats := &FetchStats{}

	ctx, span := tracing.StartSpan(ctx, "fetch.articles",
		attribute.Int("queries", len(s.cfg.Queries)),
		attribute.Int("feeds", len(s.cfg.Feeds)))
	defer span.End()

	hits := s.searchAll(ctx, stats)
	hits = append(hits, s.fetchFeeds(ctx, stats)...)
	stats.RawHits = len(hits)

	unique := dedupByURL(hits)
	stats.Unique = len(unique)
	metrics.RecordArticlesDropped("duplicate", stats.RawHits-stats.Unique)

	articles := make([]entity.Article, 0, len(unique))
	for _, h := range unique {
		if err := s.validateHit(h); err != nil {
			stats.Invalid++
			logger.Debug("dropping invalid article",
				slog.String("url", h.URL),
				slog.Any("error", err))
			continue
		}

		a := h.toArticle()
		if !s.keywords.IsRelevant(a) {
			stats.Irrelevant++
			continue
		}
		articles = append(articles, a)
	}
	metrics.RecordArticlesDropped("invalid", stats.Invalid)
	metrics.RecordArticlesDropped("irrelevant", stats.Irrelevant)

	if s.cfg.MaxArticles > 0 && len(articles) > s.cfg.MaxArticles {
		stats.Capped = len(articles) - s.cfg.MaxArticles
		articles = articles[:s.cfg.MaxArticles]
		metrics.RecordArticlesDropped("capped", stats.Capped)
	}

	stats.Returned = len(articles)
	stats.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("returned", stats.Returned))

	logger.Info("fetch completed",
		slog.Int("queries", stats.QueriesIssued),
		slog.Int("queries_failed", stats.QueriesFailed),
		slog.Int("feeds_failed", stats.FeedsFailed),
		slog.Int("raw_hits", stats.RawHits),
		slog.Int("unique", stats.Unique),
		slog.Int("invalid", stats.Invalid),
		slog.Int("irrelevant", stats.Irrelevant),
		slog.Int("returned", stats.Returned),
		slog.Duration("duration", stats.Duration),
	)

	return articles, stats
}

func (s *Service) searchAll(ctx context.Context, stats *FetchStats) []Hit {
	if s.searcher == nil {
		return nil
	}
	logger := slog.Default()
	from := s.now().Add(-s.cfg.Lookback)

	var hits []Hit
	for _, q := range s.cfg.Queries {
		if err := s.limiter.Wait(ctx); err != nil {
			logger.Warn("news search interrupted", slog.Any("error", err))
			break
		}

		stats.QueriesIssued++
		qStart := time.Now()
		result, err := s.searcher.Search(ctx, SearchQuery{
			Query:    q,
			From:     from,
			Language: s.cfg.Language,
			PageSize: s.cfg.PageSize,
		})
		metrics.RecordNewsQuery(time.Since(qStart), err == nil)
		if err != nil {
			stats.QueriesFailed++
			logger.Warn("news search failed",
				slog.String("query", q),
				slog.Any("error", err))
			continue
		}

		logger.Debug("news search completed",
			slog.String("query", q),
			slog.Int("hits", len(result)))
		metrics.RecordArticlesFetched(OriginNewsAPI, len(result))
		hits = append(hits, result...)
	}
	return hits
}

func (s *Service) fetchFeeds(ctx context.Context, stats *FetchStats) []Hit {
	if s.feeds == nil {
		return nil
	}
	logger := slog.Default()

	var hits []Hit
	for _, url := range s.cfg.Feeds {
		if ctx.Err() != nil {
			break
		}
		items, err := s.feeds.Fetch(ctx, url)
		if err != nil {
			stats.FeedsFailed++
			logger.Warn("feed fetch failed",
				slog.String("feed", url),
				slog.Any("error", err))
			continue
		}
		stats.FeedsFetched++
		metrics.RecordArticlesFetched(OriginRSS, len(items))
		hits = append(hits, items...)
	}
	return hits
}

func (s *Service) validateHit(h Hit) error {
	if err := s.validate.Struct(h); err != nil {
		return err
	}
	return entity.ValidateURL(h.URL)
}

// dedupByURL keeps the first hit for every URL, preserving order.
// Hits without a URL are kept so that validation can count them.
func dedupByURL(hits []Hit) []Hit {
	seen := make(map[string]struct{}, len(hits))
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		h.URL = strings.TrimSpace(h.URL)
		if h.URL != "" {
			if _, dup := seen[h.URL]; dup {
				continue
			}
			seen[h.URL] = struct{}{}
		}
		out = append(out, h)
	}
	return out
}

func (h Hit) toArticle() entity.Article {
	return entity.Article{
		Title:       strings.TrimSpace(h.Title),
		Description: strings.TrimSpace(h.Description),
		Content:     h.Content,
		URL:         h.URL,
		PublishedAt: h.PublishedAt,
		Source:      h.Source,
	}
}
