package fetch

import (
	"errors"
	"fmt"
	"time"
)

// DefaultQueries are the broad searches issued every cycle.
var DefaultQueries = []string{
	"India finance",
	"Indian stock market",
	"SENSEX OR NIFTY",
	"BSE OR NSE",
	"India economy",
}

// Config controls what FetchArticles asks for.
type Config struct {
	// Queries are sent to the news API one after another.
	Queries []string

	// Lookback sets the "from" bound of every query relative to now.
	Lookback time.Duration

	Language string
	PageSize int

	// MaxArticles caps the articles returned per cycle after filtering.
	// Zero or negative disables the cap.
	MaxArticles int

	// Feeds are optional RSS/Atom URLs merged into the hits before dedup.
	Feeds []string

	Keywords Keywords
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Queries:     append([]string(nil), DefaultQueries...),
		Lookback:    48 * time.Hour,
		Language:    "en",
		PageSize:    20,
		MaxArticles: 99,
		Keywords:    DefaultKeywords(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if len(c.Queries) == 0 && len(c.Feeds) == 0 {
		errs = append(errs, errors.New("at least one query or feed is required"))
	}
	if c.Lookback <= 0 {
		errs = append(errs, fmt.Errorf("lookback must be positive, got %v", c.Lookback))
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		errs = append(errs, fmt.Errorf("page size must be between 1 and 100, got %d", c.PageSize))
	}
	if err := c.Keywords.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
