// Package report builds read models from the sentiment cache: the daily
// digest and the lists served by the HTTP API and the CLI.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/repository"
)

// DefaultTopN is the number of strongest results kept per polarity in a digest.
const DefaultTopN = 5

// Service reads the cache.
type Service struct {
	repo repository.SentimentRepository
	loc  *time.Location
	topN int
}

// NewService creates a report Service. Day boundaries are computed in loc
// (nil means UTC).
func NewService(repo repository.SentimentRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, topN: DefaultTopN}
}

// Location returns the time zone used for day boundaries.
func (s *Service) Location() *time.Location { return s.loc }

// TodayResults returns the results processed since local midnight, ordered
// by score descending. Rows that cannot be rebuilt are skipped.
func (s *Service) TodayResults(ctx context.Context, now time.Time) ([]entity.SentimentResult, error) {
	rows, err := repository.ListToday(ctx, s.repo, s.loc, now)
	if err != nil {
		return nil, fmt.Errorf("TodayResults: %w", err)
	}
	return toResults(rows), nil
}

// BuildDailyReport aggregates today's cache rows into a digest.
// It returns ErrNoArticles when no usable rows exist.
func (s *Service) BuildDailyReport(ctx context.Context, now time.Time) (*entity.DailyDigest, error) {
	results, err := s.TodayResults(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("BuildDailyReport: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoArticles
	}

	from, _ := repository.DayBounds(now, s.loc)
	return entity.NewDailyDigest(from, results, s.topN), nil
}

// Top returns up to limit cached results with the given label ranked by
// absolute score. An empty label ranks across all labels.
func (s *Service) Top(ctx context.Context, label entity.SentimentLabel, limit int) ([]entity.SentimentResult, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.repo.TopBySentiment(ctx, label, limit)
	if err != nil {
		return nil, fmt.Errorf("Top: %w", err)
	}
	return toResults(rows), nil
}

func toResults(rows []*entity.CachedSentiment) []entity.SentimentResult {
	results := make([]entity.SentimentResult, 0, len(rows))
	for _, row := range rows {
		r, err := row.ToResult()
		if err != nil {
			slog.Warn("skipping unreadable cache row",
				slog.Int64("id", row.ID),
				slog.String("title", row.Title),
				slog.Any("error", err))
			continue
		}
		results = append(results, *r)
	}
	return results
}
