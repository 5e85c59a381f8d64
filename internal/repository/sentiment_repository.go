package repository

import (
	"context"
	"time"

	"market-pulse/internal/domain/entity"
)

// SentimentRepository persists scored articles in the relational cache.
type SentimentRepository interface {
	// Upsert inserts the row or, when a row with the same title exists,
	// overwrites it with the new analysis.
	Upsert(ctx context.Context, row *entity.CachedSentiment) error

	// ListProcessedBetween returns rows with from <= processed_at < to,
	// ordered by sentiment descending.
	ListProcessedBetween(ctx context.Context, from, to time.Time) ([]*entity.CachedSentiment, error)

	// TopBySentiment returns up to limit rows with the given label,
	// ranked by absolute sentiment. An empty label matches every row.
	TopBySentiment(ctx context.Context, label entity.SentimentLabel, limit int) ([]*entity.CachedSentiment, error)

	// GetByTitle returns entity.ErrNotFound when no row has the title.
	GetByTitle(ctx context.Context, title string) (*entity.CachedSentiment, error)

	Count(ctx context.Context) (int64, error)
}

// ListToday returns rows processed since local midnight of now in loc.
func ListToday(ctx context.Context, repo SentimentRepository, loc *time.Location, now time.Time) ([]*entity.CachedSentiment, error) {
	from, to := DayBounds(now, loc)
	return repo.ListProcessedBetween(ctx, from, to)
}

// DayBounds returns local midnight of now's day in loc and the following
// midnight. A nil loc means UTC.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}
